package domain

// ReviewOutcome is the result of a reviewer or applicant action on an artifact.
type ReviewOutcome struct {
	Artifact            *Artifact
	Entry               *LedgerEntry
	ApplicationStatus   ApplicationStatus
	AttemptNumber       int
	AttemptsRemaining   int
	Warning             bool
	PermanentlyRejected bool
	Locked              bool
	Rejection           *PermanentRejectionRecord
}

// BatchOutcome is the result of closing a document review batch.
type BatchOutcome struct {
	ApplicationStatus  ApplicationStatus
	Decision           Decision
	RejectedArtifacts  int
	NotificationQueued bool
}

// AttendanceOutcome is the result of an orientation check-in or check-out.
type AttendanceOutcome struct {
	Record            *OrientationRecord
	ApplicationStatus ApplicationStatus
}

// SessionOutcome summarises a finalized orientation session.
type SessionOutcome struct {
	Completed int
	Missed    int
}

// ResetOutcome is the result of an administrative reset.
type ResetOutcome struct {
	ApplicationStatus ApplicationStatus
	EntriesDeleted    int
	ArtifactsReset    int
}

// ApplicationOverview is the read model of one application.
type ApplicationOverview struct {
	Application *Application
	Documents   []Artifact
	Payment     *Artifact
	Orientation *OrientationRecord
	Rejection   *PermanentRejectionRecord
}
