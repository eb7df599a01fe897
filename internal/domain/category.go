package domain

// Category is a closed rejection category. Each issue type has its own set.
type Category string

// Medical referral categories.
const (
	CategoryAbnormalXray       Category = "abnormal_xray"
	CategoryPositiveDrugTest   Category = "positive_drug_test"
	CategoryAbnormalStoolExam  Category = "abnormal_stool_exam"
	CategoryAbnormalUrinalysis Category = "abnormal_urinalysis"
	CategoryHepatitisReactive  Category = "hepatitis_reactive"
	CategoryOtherMedical       Category = "other_medical"
)

// Document issue categories.
const (
	CategoryQualityIssue       Category = "quality_issue"
	CategoryWrongDocument      Category = "wrong_document"
	CategoryExpiredDocument    Category = "expired_document"
	CategoryIncompleteDocument Category = "incomplete_document"
	CategoryNameMismatch       Category = "name_mismatch"
	CategoryOtherDocument      Category = "other_document"
)

// Payment rejection categories.
const (
	CategoryInvalidReceipt    Category = "invalid_receipt"
	CategoryAmountMismatch    Category = "amount_mismatch"
	CategoryUnreadableReceipt Category = "unreadable_receipt"
	CategoryDuplicatePayment  Category = "duplicate_payment"
	CategoryReferenceMismatch Category = "reference_mismatch"
	CategoryOtherPayment      Category = "other_payment"
)

func (c Category) String() string { return string(c) }

var categoriesByIssue = map[IssueType][]Category{
	IssueMedicalReferral: {
		CategoryAbnormalXray, CategoryPositiveDrugTest, CategoryAbnormalStoolExam,
		CategoryAbnormalUrinalysis, CategoryHepatitisReactive, CategoryOtherMedical,
	},
	IssueDocument: {
		CategoryQualityIssue, CategoryWrongDocument, CategoryExpiredDocument,
		CategoryIncompleteDocument, CategoryNameMismatch, CategoryOtherDocument,
	},
	IssuePayment: {
		CategoryInvalidReceipt, CategoryAmountMismatch, CategoryUnreadableReceipt,
		CategoryDuplicatePayment, CategoryReferenceMismatch, CategoryOtherPayment,
	},
}

// BelongsTo reports whether c is part of the closed set for issue type t.
func (c Category) BelongsTo(t IssueType) bool {
	for _, cat := range categoriesByIssue[t] {
		if cat == c {
			return true
		}
	}
	return false
}

// CategoriesFor returns the closed category set of an issue type.
func CategoriesFor(t IssueType) []Category {
	out := make([]Category, len(categoriesByIssue[t]))
	copy(out, categoriesByIssue[t])
	return out
}
