package rest

import (
	"time"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

type artifactResponse struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"applicationId"`
	Kind          string     `json:"kind"`
	TypeID        string     `json:"typeId"`
	FileRef       string     `json:"fileRef"`
	FileSize      int64      `json:"fileSize"`
	ContentType   string     `json:"contentType,omitempty"`
	Status        string     `json:"status"`
	AdminRemarks  *string    `json:"adminRemarks,omitempty"`
	ReviewedBy    *string    `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	UploadedAt    time.Time  `json:"uploadedAt"`
}

type ledgerEntryResponse struct {
	ID                    string     `json:"id"`
	ArtifactKind          string     `json:"artifactKind"`
	ArtifactTypeID        string     `json:"artifactTypeId"`
	AttemptNumber         int        `json:"attemptNumber"`
	IssueType             string     `json:"issueType"`
	Category              string     `json:"category"`
	Reason                string     `json:"reason"`
	SpecificIssues        []string   `json:"specificIssues,omitempty"`
	DoctorName            *string    `json:"doctorName,omitempty"`
	ClinicAddress         *string    `json:"clinicAddress,omitempty"`
	IssuedBy              string     `json:"issuedBy"`
	IssuedAt              time.Time  `json:"issuedAt"`
	Status                string     `json:"status"`
	WasReplaced           bool       `json:"wasReplaced"`
	ReplacementArtifactID *string    `json:"replacementArtifactId,omitempty"`
	ReplacedAt            *time.Time `json:"replacedAt,omitempty"`
	ResolvedAt            *time.Time `json:"resolvedAt,omitempty"`
	ResolutionNotes       *string    `json:"resolutionNotes,omitempty"`
}

type rejectionResponse struct {
	TriggerArtifactTypeID string    `json:"triggerArtifactTypeId"`
	TriggerCategory       string    `json:"triggerCategory"`
	TotalDocumentAttempts int       `json:"totalDocumentAttempts"`
	TotalPaymentAttempts  int       `json:"totalPaymentAttempts"`
	RejectedBy            string    `json:"rejectedBy"`
	RejectedAt            time.Time `json:"rejectedAt"`
}

type reviewOutcomeResponse struct {
	Artifact            *artifactResponse    `json:"artifact,omitempty"`
	Entry               *ledgerEntryResponse `json:"entry,omitempty"`
	ApplicationStatus   string               `json:"applicationStatus"`
	AttemptNumber       int                  `json:"attemptNumber,omitempty"`
	AttemptsRemaining   int                  `json:"attemptsRemaining"`
	Warning             bool                 `json:"warning"`
	PermanentlyRejected bool                 `json:"permanentlyRejected"`
	Locked              bool                 `json:"locked"`
	Rejection           *rejectionResponse   `json:"rejection,omitempty"`
}

type batchOutcomeResponse struct {
	ApplicationStatus  string `json:"applicationStatus"`
	Decision           string `json:"decision"`
	RejectedArtifacts  int    `json:"rejectedArtifacts"`
	NotificationQueued bool   `json:"notificationQueued"`
}

type orientationResponse struct {
	ID           string     `json:"id"`
	SessionDate  string     `json:"sessionDate"`
	SessionSlot  string     `json:"sessionSlot"`
	Venue        string     `json:"venue"`
	Status       string     `json:"status"`
	CheckInTime  *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
}

type attendanceResponse struct {
	Record            *orientationResponse `json:"record,omitempty"`
	ApplicationStatus string               `json:"applicationStatus"`
}

type sessionResponse struct {
	Completed int `json:"completed"`
	Missed    int `json:"missed"`
}

type resetResponse struct {
	ApplicationStatus string `json:"applicationStatus"`
	EntriesDeleted    int    `json:"entriesDeleted"`
	ArtifactsReset    int    `json:"artifactsReset"`
}

type applicationResponse struct {
	ID                   string     `json:"id"`
	ApplicantID          string     `json:"applicantId"`
	JobCategoryID        string     `json:"jobCategoryId"`
	Type                 string     `json:"type"`
	Status               string     `json:"status"`
	OrientationCompleted bool       `json:"orientationCompleted"`
	PaymentDeadline      *time.Time `json:"paymentDeadline,omitempty"`
	AdminRemarks         *string    `json:"adminRemarks,omitempty"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type overviewResponse struct {
	Application applicationResponse  `json:"application"`
	Documents   []artifactResponse   `json:"documents"`
	Payment     *artifactResponse    `json:"payment,omitempty"`
	Orientation *orientationResponse `json:"orientation,omitempty"`
	Rejection   *rejectionResponse   `json:"rejection,omitempty"`
}

// ---------------------------------------------------------------------------
// Mappers
// ---------------------------------------------------------------------------

func toArtifactResponse(a *domain.Artifact) *artifactResponse {
	if a == nil {
		return nil
	}
	resp := &artifactResponse{
		ID:            a.ID.String(),
		ApplicationID: a.ApplicationID.String(),
		Kind:          string(a.Kind),
		TypeID:        a.TypeID,
		FileRef:       a.FileRef,
		FileSize:      a.FileSize,
		ContentType:   a.ContentType,
		Status:        string(a.Status),
		AdminRemarks:  a.AdminRemarks,
		ReviewedAt:    a.ReviewedAt,
		UploadedAt:    a.UploadedAt,
	}
	if a.ReviewedBy != nil {
		s := a.ReviewedBy.String()
		resp.ReviewedBy = &s
	}
	return resp
}

func toLedgerEntryResponse(e *domain.LedgerEntry) *ledgerEntryResponse {
	if e == nil {
		return nil
	}
	resp := &ledgerEntryResponse{
		ID:              e.ID.String(),
		ArtifactKind:    string(e.ArtifactKind),
		ArtifactTypeID:  e.ArtifactTypeID,
		AttemptNumber:   e.AttemptNumber,
		IssueType:       string(e.IssueType),
		Category:        string(e.Category),
		Reason:          e.Reason,
		SpecificIssues:  e.SpecificIssues,
		DoctorName:      e.DoctorName,
		ClinicAddress:   e.ClinicAddress,
		IssuedBy:        e.IssuedBy.String(),
		IssuedAt:        e.IssuedAt,
		Status:          string(e.Status),
		WasReplaced:     e.WasReplaced,
		ReplacedAt:      e.ReplacedAt,
		ResolvedAt:      e.ResolvedAt,
		ResolutionNotes: e.ResolutionNotes,
	}
	if e.ReplacementArtifactID != nil {
		s := e.ReplacementArtifactID.String()
		resp.ReplacementArtifactID = &s
	}
	return resp
}

func toRejectionResponse(r *domain.PermanentRejectionRecord) *rejectionResponse {
	if r == nil {
		return nil
	}
	return &rejectionResponse{
		TriggerArtifactTypeID: r.TriggerArtifactTypeID,
		TriggerCategory:       string(r.TriggerCategory),
		TotalDocumentAttempts: r.TotalDocumentAttempts,
		TotalPaymentAttempts:  r.TotalPaymentAttempts,
		RejectedBy:            r.RejectedBy,
		RejectedAt:            r.RejectedAt,
	}
}

func toReviewOutcomeResponse(o *domain.ReviewOutcome) reviewOutcomeResponse {
	return reviewOutcomeResponse{
		Artifact:            toArtifactResponse(o.Artifact),
		Entry:               toLedgerEntryResponse(o.Entry),
		ApplicationStatus:   string(o.ApplicationStatus),
		AttemptNumber:       o.AttemptNumber,
		AttemptsRemaining:   o.AttemptsRemaining,
		Warning:             o.Warning,
		PermanentlyRejected: o.PermanentlyRejected,
		Locked:              o.Locked,
		Rejection:           toRejectionResponse(o.Rejection),
	}
}

func toOrientationResponse(r *domain.OrientationRecord) *orientationResponse {
	if r == nil {
		return nil
	}
	return &orientationResponse{
		ID:           r.ID.String(),
		SessionDate:  r.SessionDate.Format(time.DateOnly),
		SessionSlot:  r.SessionSlot,
		Venue:        r.Venue,
		Status:       string(r.Status),
		CheckInTime:  r.CheckInTime,
		CheckOutTime: r.CheckOutTime,
	}
}

func toApplicationResponse(a *domain.Application) applicationResponse {
	return applicationResponse{
		ID:                   a.ID.String(),
		ApplicantID:          a.ApplicantID.String(),
		JobCategoryID:        a.JobCategoryID.String(),
		Type:                 string(a.Type),
		Status:               string(a.Status),
		OrientationCompleted: a.OrientationCompleted,
		PaymentDeadline:      a.PaymentDeadline,
		AdminRemarks:         a.AdminRemarks,
		UpdatedAt:            a.UpdatedAt,
	}
}

func toOverviewResponse(o *domain.ApplicationOverview) overviewResponse {
	docs := make([]artifactResponse, 0, len(o.Documents))
	for i := range o.Documents {
		docs = append(docs, *toArtifactResponse(&o.Documents[i]))
	}
	return overviewResponse{
		Application: toApplicationResponse(o.Application),
		Documents:   docs,
		Payment:     toArtifactResponse(o.Payment),
		Orientation: toOrientationResponse(o.Orientation),
		Rejection:   toRejectionResponse(o.Rejection),
	}
}
