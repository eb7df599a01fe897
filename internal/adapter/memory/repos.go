package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/healthcard-backend/internal/domain"
)

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------------

// ApplicationRepo is the in-memory application repository.
type ApplicationRepo struct{ store *Store }

// NewApplicationRepo creates an application repository over the store.
func NewApplicationRepo(store *Store) *ApplicationRepo { return &ApplicationRepo{store: store} }

func (r *ApplicationRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	var (
		app domain.Application
		ok  bool
	)
	r.store.read(func(st *state) { app, ok = st.applications[id] })
	if !ok {
		return nil, notFound("application", id)
	}
	return &app, nil
}

func (r *ApplicationRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepo) Create(_ context.Context, app domain.Application) (*domain.Application, error) {
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = app.CreatedAt
	err := r.store.write(func(st *state) error {
		if _, ok := st.applications[app.ID]; ok {
			return fmt.Errorf("application %s: %w", app.ID, domain.ErrAlreadyExists)
		}
		st.applications[app.ID] = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepo) Update(_ context.Context, id uuid.UUID, upd domain.ApplicationUpdate) (*domain.Application, error) {
	var app domain.Application
	err := r.store.write(func(st *state) error {
		cur, ok := st.applications[id]
		if !ok {
			return notFound("application", id)
		}
		if upd.IsEmpty() {
			app = cur
			return nil
		}
		if upd.Status != nil {
			cur.Status = *upd.Status
		}
		if upd.OrientationCompleted != nil {
			cur.OrientationCompleted = *upd.OrientationCompleted
		}
		if upd.PaymentDeadline != nil {
			t := *upd.PaymentDeadline
			cur.PaymentDeadline = &t
		}
		if upd.AdminRemarks != nil {
			s := *upd.AdminRemarks
			cur.AdminRemarks = &s
		}
		if upd.LastUpdatedBy != nil {
			u := *upd.LastUpdatedBy
			cur.LastUpdatedBy = &u
		}
		cur.UpdatedAt = time.Now().UTC()
		st.applications[id] = cur
		app = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ---------------------------------------------------------------------------
// Artifacts
// ---------------------------------------------------------------------------

// ArtifactRepo is the in-memory document or payment repository.
type ArtifactRepo struct {
	store *Store
	kind  domain.ArtifactKind
}

// NewArtifactRepo creates a repository for artifacts of one kind.
func NewArtifactRepo(store *Store, kind domain.ArtifactKind) *ArtifactRepo {
	return &ArtifactRepo{store: store, kind: kind}
}

func (r *ArtifactRepo) table(st *state) map[uuid.UUID]domain.Artifact {
	if r.kind == domain.ArtifactKindPayment {
		return st.payments
	}
	return st.documents
}

func (r *ArtifactRepo) entity() string { return string(r.kind) }

func (r *ArtifactRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Artifact, error) {
	var (
		a  domain.Artifact
		ok bool
	)
	r.store.read(func(st *state) { a, ok = r.table(st)[id] })
	if !ok {
		return nil, notFound(r.entity(), id)
	}
	return &a, nil
}

func (r *ArtifactRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Artifact, error) {
	return r.GetByID(ctx, id)
}

func (r *ArtifactRepo) GetByTypeForUpdate(_ context.Context, applicationID uuid.UUID, typeID string) (*domain.Artifact, error) {
	var (
		a  domain.Artifact
		ok bool
	)
	r.store.read(func(st *state) {
		for _, cur := range r.table(st) {
			if cur.ApplicationID == applicationID && (r.kind == domain.ArtifactKindPayment || cur.TypeID == typeID) {
				a, ok = cur, true
				return
			}
		}
	})
	if !ok {
		return nil, notFound(r.entity(), applicationID)
	}
	return &a, nil
}

func (r *ArtifactRepo) ListByApplication(_ context.Context, applicationID uuid.UUID) ([]domain.Artifact, error) {
	var out []domain.Artifact
	r.store.read(func(st *state) {
		for _, a := range r.table(st) {
			if a.ApplicationID == applicationID {
				out = append(out, a)
			}
		}
	})
	slices.SortFunc(out, func(a, b domain.Artifact) int {
		if c := a.UploadedAt.Compare(b.UploadedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (r *ArtifactRepo) Create(_ context.Context, a domain.Artifact) (*domain.Artifact, error) {
	a.Kind = r.kind
	if r.kind == domain.ArtifactKindPayment {
		a.TypeID = domain.PaymentTypeID
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = time.Now().UTC()
	}
	a.UpdatedAt = a.UploadedAt
	if a.Status == "" {
		a.Status = domain.ReviewPending
	}
	err := r.store.write(func(st *state) error {
		for _, cur := range r.table(st) {
			if cur.ID == a.ID || (cur.ApplicationID == a.ApplicationID && cur.TypeID == a.TypeID) {
				return fmt.Errorf("%s %s: %w", r.entity(), a.ID, domain.ErrAlreadyExists)
			}
		}
		r.table(st)[a.ID] = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtifactRepo) modify(id uuid.UUID, fn func(a *domain.Artifact)) (*domain.Artifact, error) {
	var a domain.Artifact
	err := r.store.write(func(st *state) error {
		cur, ok := r.table(st)[id]
		if !ok {
			return notFound(r.entity(), id)
		}
		fn(&cur)
		r.table(st)[id] = cur
		a = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArtifactRepo) UpdateReview(_ context.Context, id uuid.UUID, rv domain.ArtifactReview) (*domain.Artifact, error) {
	return r.modify(id, func(a *domain.Artifact) {
		at := rv.ReviewedAt
		a.Status = rv.Status
		a.AdminRemarks = rv.Remarks
		a.ReviewedBy = rv.ReviewedBy
		a.ReviewedAt = &at
		a.UpdatedAt = at
	})
}

func (r *ArtifactRepo) Replace(_ context.Context, id uuid.UUID, file domain.FileMeta, at time.Time) (*domain.Artifact, error) {
	return r.modify(id, func(a *domain.Artifact) {
		a.FileRef = file.Ref
		a.FileSize = file.Size
		a.ContentType = file.ContentType
		a.Status = domain.ReviewPending
		a.AdminRemarks = nil
		a.ReviewedBy = nil
		a.ReviewedAt = nil
		a.UploadedAt = at
		a.UpdatedAt = at
	})
}

func (r *ArtifactRepo) ResetByApplication(_ context.Context, applicationID uuid.UUID, at time.Time) (int, error) {
	n := 0
	err := r.store.write(func(st *state) error {
		t := r.table(st)
		for id, a := range t {
			if a.ApplicationID != applicationID {
				continue
			}
			a.Status = domain.ReviewPending
			a.AdminRemarks = nil
			a.ReviewedBy = nil
			a.ReviewedAt = nil
			a.UpdatedAt = at
			t[id] = a
			n++
		}
		return nil
	})
	return n, err
}

// ---------------------------------------------------------------------------
// Ledger
// ---------------------------------------------------------------------------

// LedgerRepo is the in-memory primary ledger. It enforces the same unique
// attempt number and single outstanding entry constraints as the database.
type LedgerRepo struct{ store *Store }

// NewLedgerRepo creates a ledger repository over the store.
func NewLedgerRepo(store *Store) *LedgerRepo { return &LedgerRepo{store: store} }

func sameType(e domain.LedgerEntry, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) bool {
	return e.ApplicationID == applicationID && e.ArtifactKind == kind && e.ArtifactTypeID == typeID
}

func (r *LedgerRepo) Create(_ context.Context, e domain.LedgerEntry) error {
	return r.store.write(func(st *state) error {
		for _, cur := range st.ledger {
			if !sameType(cur, e.ApplicationID, e.ArtifactKind, e.ArtifactTypeID) {
				continue
			}
			if cur.AttemptNumber == e.AttemptNumber || (cur.IsOutstanding() && e.IsOutstanding()) {
				return fmt.Errorf("review_ledger %s: %w", e.ID, domain.ErrAlreadyExists)
			}
		}
		if _, ok := st.ledger[e.ID]; ok {
			return fmt.Errorf("review_ledger %s: %w", e.ID, domain.ErrAlreadyExists)
		}
		st.ledger[e.ID] = e
		return nil
	})
}

func (r *LedgerRepo) MarkReplaced(_ context.Context, id, replacementID uuid.UUID, at time.Time) error {
	return r.store.write(func(st *state) error {
		e, ok := st.ledger[id]
		if !ok || e.WasReplaced {
			return fmt.Errorf("review_ledger %s: %w", id, domain.ErrConflict)
		}
		e.WasReplaced = true
		e.Status = domain.LedgerResubmitted
		e.ReplacementArtifactID = &replacementID
		e.ReplacedAt = &at
		st.ledger[id] = e
		return nil
	})
}

func (r *LedgerRepo) Resolve(_ context.Context, id uuid.UUID, res domain.LedgerResolution) error {
	return r.store.write(func(st *state) error {
		e, ok := st.ledger[id]
		if !ok || e.Status.IsTerminal() {
			return fmt.Errorf("review_ledger %s: %w", id, domain.ErrConflict)
		}
		by, at := res.ResolvedBy, res.ResolvedAt
		e.Status = res.Status
		e.ResolvedBy = &by
		e.ResolvedAt = &at
		e.ResolutionNotes = res.Notes
		st.ledger[id] = e
		return nil
	})
}

func (r *LedgerRepo) DeleteByApplication(_ context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error) {
	n := 0
	err := r.store.write(func(st *state) error {
		for id, e := range st.ledger {
			if e.ApplicationID == applicationID && e.ArtifactKind == kind {
				delete(st.ledger, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *LedgerRepo) CountAttempts(_ context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (int, error) {
	n := 0
	r.store.read(func(st *state) {
		for _, e := range st.ledger {
			if sameType(e, applicationID, kind, typeID) {
				n++
			}
		}
	})
	return n, nil
}

func (r *LedgerRepo) CountByApplication(_ context.Context, applicationID uuid.UUID, kind domain.ArtifactKind) (int, error) {
	n := 0
	r.store.read(func(st *state) {
		for _, e := range st.ledger {
			if e.ApplicationID == applicationID && e.ArtifactKind == kind {
				n++
			}
		}
	})
	return n, nil
}

func (r *LedgerRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	var (
		e  domain.LedgerEntry
		ok bool
	)
	r.store.read(func(st *state) { e, ok = st.ledger[id] })
	if !ok {
		return nil, notFound("review_ledger", id)
	}
	return &e, nil
}

func (r *LedgerRepo) GetOutstanding(_ context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (*domain.LedgerEntry, error) {
	var (
		e  domain.LedgerEntry
		ok bool
	)
	r.store.read(func(st *state) {
		for _, cur := range st.ledger {
			if sameType(cur, applicationID, kind, typeID) && cur.IsOutstanding() {
				e, ok = cur, true
				return
			}
		}
	})
	if !ok {
		return nil, notFound("review_ledger", applicationID)
	}
	return &e, nil
}

func (r *LedgerRepo) ListByArtifactType(_ context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	r.store.read(func(st *state) {
		for _, e := range st.ledger {
			if sameType(e, applicationID, kind, typeID) {
				out = append(out, e)
			}
		}
	})
	slices.SortFunc(out, func(a, b domain.LedgerEntry) int { return b.AttemptNumber - a.AttemptNumber })
	return out, nil
}

// LegacyLedgerRepo is the in-memory legacy document rejection history.
type LegacyLedgerRepo struct{ store *Store }

// NewLegacyLedgerRepo creates a legacy ledger replica over the store.
func NewLegacyLedgerRepo(store *Store) *LegacyLedgerRepo { return &LegacyLedgerRepo{store: store} }

func (r *LegacyLedgerRepo) Supports(kind domain.ArtifactKind) bool {
	return kind == domain.ArtifactKindDocument
}

func (r *LegacyLedgerRepo) Append(_ context.Context, e domain.LedgerEntry) error {
	return r.store.write(func(st *state) error {
		for _, cur := range st.legacy {
			if cur.ID == e.ID || (sameType(cur, e.ApplicationID, e.ArtifactKind, e.ArtifactTypeID) && cur.AttemptNumber == e.AttemptNumber) {
				return fmt.Errorf("document_rejection_history %s: %w", e.ID, domain.ErrAlreadyExists)
			}
		}
		st.legacy[e.ID] = e
		return nil
	})
}

// Seed stores a legacy row directly, as if written before the dual write existed.
func (r *LegacyLedgerRepo) Seed(e domain.LedgerEntry) {
	_ = r.store.write(func(st *state) error {
		st.legacy[e.ID] = e
		return nil
	})
}

func (r *LegacyLedgerRepo) CountAttempts(_ context.Context, applicationID uuid.UUID, kind domain.ArtifactKind, typeID string) (int, error) {
	n := 0
	r.store.read(func(st *state) {
		for _, e := range st.legacy {
			if sameType(e, applicationID, kind, typeID) {
				n++
			}
		}
	})
	return n, nil
}

func (r *LegacyLedgerRepo) CountByApplication(_ context.Context, applicationID uuid.UUID, _ domain.ArtifactKind) (int, error) {
	n := 0
	r.store.read(func(st *state) {
		for _, e := range st.legacy {
			if e.ApplicationID == applicationID {
				n++
			}
		}
	})
	return n, nil
}

func (r *LegacyLedgerRepo) MarkReplaced(_ context.Context, id, replacementID uuid.UUID, at time.Time) error {
	return r.store.write(func(st *state) error {
		if e, ok := st.legacy[id]; ok {
			e.WasReplaced = true
			e.Status = domain.LedgerResubmitted
			e.ReplacementArtifactID = &replacementID
			e.ReplacedAt = &at
			st.legacy[id] = e
		}
		return nil
	})
}

func (r *LegacyLedgerRepo) SetStatus(_ context.Context, id uuid.UUID, status domain.LedgerStatus) error {
	return r.store.write(func(st *state) error {
		if e, ok := st.legacy[id]; ok {
			e.Status = status
			st.legacy[id] = e
		}
		return nil
	})
}

func (r *LegacyLedgerRepo) DeleteByApplication(_ context.Context, applicationID uuid.UUID, _ domain.ArtifactKind) (int, error) {
	n := 0
	err := r.store.write(func(st *state) error {
		for id, e := range st.legacy {
			if e.ApplicationID == applicationID {
				delete(st.legacy, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

// ---------------------------------------------------------------------------
// Permanent rejections, orientation, categories
// ---------------------------------------------------------------------------

// RejectionRepo is the in-memory permanent rejection repository.
type RejectionRepo struct{ store *Store }

// NewRejectionRepo creates a permanent rejection repository over the store.
func NewRejectionRepo(store *Store) *RejectionRepo { return &RejectionRepo{store: store} }

func (r *RejectionRepo) Create(_ context.Context, rec domain.PermanentRejectionRecord) error {
	return r.store.write(func(st *state) error {
		if _, ok := st.rejections[rec.ApplicationID]; ok {
			return fmt.Errorf("permanent_rejection %s: %w", rec.ApplicationID, domain.ErrAlreadyExists)
		}
		st.rejections[rec.ApplicationID] = rec
		return nil
	})
}

func (r *RejectionRepo) GetByApplication(_ context.Context, applicationID uuid.UUID) (*domain.PermanentRejectionRecord, error) {
	var (
		rec domain.PermanentRejectionRecord
		ok  bool
	)
	r.store.read(func(st *state) { rec, ok = st.rejections[applicationID] })
	if !ok {
		return nil, notFound("permanent_rejection", applicationID)
	}
	return &rec, nil
}

// OrientationRepo is the in-memory orientation repository.
type OrientationRepo struct{ store *Store }

// NewOrientationRepo creates an orientation repository over the store.
func NewOrientationRepo(store *Store) *OrientationRepo { return &OrientationRepo{store: store} }

func (r *OrientationRepo) GetByApplication(_ context.Context, applicationID uuid.UUID) (*domain.OrientationRecord, error) {
	var (
		rec domain.OrientationRecord
		ok  bool
	)
	r.store.read(func(st *state) { rec, ok = st.orientation[applicationID] })
	if !ok {
		return nil, notFound("orientation_record", applicationID)
	}
	return &rec, nil
}

func (r *OrientationRepo) GetByApplicationForUpdate(ctx context.Context, applicationID uuid.UUID) (*domain.OrientationRecord, error) {
	return r.GetByApplication(ctx, applicationID)
}

func (r *OrientationRepo) Create(_ context.Context, rec domain.OrientationRecord) (*domain.OrientationRecord, error) {
	now := time.Now().UTC()
	rec.SessionDate = domain.SessionKey{Date: rec.SessionDate}.Day()
	if rec.Status == "" {
		rec.Status = domain.OrientationScheduled
	}
	err := r.store.write(func(st *state) error {
		if cur, ok := st.orientation[rec.ApplicationID]; ok {
			rec.ID = cur.ID
			rec.CreatedAt = cur.CreatedAt
			rec.CheckInTime, rec.CheckOutTime = nil, nil
			rec.CheckedInBy, rec.CheckedOutBy = nil, nil
		} else if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		st.orientation[rec.ApplicationID] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *OrientationRepo) Update(_ context.Context, rec domain.OrientationRecord) (*domain.OrientationRecord, error) {
	err := r.store.write(func(st *state) error {
		cur, ok := st.orientation[rec.ApplicationID]
		if !ok || cur.ID != rec.ID {
			return notFound("orientation_record", rec.ID)
		}
		cur.Status = rec.Status
		cur.CheckInTime = rec.CheckInTime
		cur.CheckOutTime = rec.CheckOutTime
		cur.CheckedInBy = rec.CheckedInBy
		cur.CheckedOutBy = rec.CheckedOutBy
		cur.UpdatedAt = time.Now().UTC()
		st.orientation[rec.ApplicationID] = cur
		rec = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *OrientationRepo) ListBySession(_ context.Context, key domain.SessionKey) ([]domain.OrientationRecord, error) {
	day := key.Day()
	var out []domain.OrientationRecord
	r.store.read(func(st *state) {
		for _, rec := range st.orientation {
			if rec.SessionDate.Equal(day) && rec.SessionSlot == key.Slot && rec.Venue == key.Venue {
				out = append(out, rec)
			}
		}
	})
	slices.SortFunc(out, func(a, b domain.OrientationRecord) int {
		return strings.Compare(a.ApplicationID.String(), b.ApplicationID.String())
	})
	return out, nil
}

// CategoryRepo is the in-memory category policy lookup.
type CategoryRepo struct{ store *Store }

// NewCategoryRepo creates a category repository over the store.
func NewCategoryRepo(store *Store) *CategoryRepo { return &CategoryRepo{store: store} }

func (r *CategoryRepo) GetPolicy(_ context.Context, jobCategoryID uuid.UUID) (domain.CategoryPolicy, error) {
	var (
		p  domain.CategoryPolicy
		ok bool
	)
	r.store.read(func(st *state) { p, ok = st.categories[jobCategoryID] })
	if !ok {
		return domain.CategoryPolicy{}, notFound("job_category", jobCategoryID)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Outbox
// ---------------------------------------------------------------------------

// NotificationRepo is the in-memory notification outbox.
type NotificationRepo struct{ store *Store }

// NewNotificationRepo creates a notification repository over the store.
func NewNotificationRepo(store *Store) *NotificationRepo { return &NotificationRepo{store: store} }

func (r *NotificationRepo) CreateBatch(_ context.Context, items []domain.Notification) error {
	now := time.Now().UTC()
	return r.store.write(func(st *state) error {
		for _, n := range items {
			if n.ID == uuid.Nil {
				n.ID = uuid.New()
			}
			if n.CreatedAt.IsZero() {
				n.CreatedAt = now
			}
			if n.ActionRef != nil {
				ref := *n.ActionRef
				n.ActionRef = &ref
			}
			st.notifications = append(st.notifications, n)
		}
		return nil
	})
}

// ActivityRepo is the in-memory activity log.
type ActivityRepo struct{ store *Store }

// NewActivityRepo creates an activity repository over the store.
func NewActivityRepo(store *Store) *ActivityRepo { return &ActivityRepo{store: store} }

func (r *ActivityRepo) Log(_ context.Context, rec domain.ActivityLog) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return r.store.write(func(st *state) error {
		st.activity = append(st.activity, rec)
		return nil
	})
}
