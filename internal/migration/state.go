package migration

// State is a point reached by a run.
type State string

const (
	StateStart         State = "start"
	StateAuthenticated State = "authenticated"
	StateAppResolved   State = "application resolved"
	StateAppVerified   State = "application verified"
	StateDataRestored  State = "data restored"
	StateFilesUploaded State = "files uploaded"
	StateAppRestarted  State = "application restarted"
	StateAppReverified State = "application reverified"
	StateDone          State = "done"
	StateAborted       State = "aborted"
)

// Step names the work that moves a run from one state to the next.
type Step string

const (
	StepAuthenticate        Step = "authenticate"
	StepResolveApplication  Step = "resolve application"
	StepVerifyApplication   Step = "verify application"
	StepRestoreDatabase     Step = "restore database"
	StepUploadFiles         Step = "upload files"
	StepRestartApplication  Step = "restart application"
	StepReverifyApplication Step = "verify restarted application"
)

// Outcome is how a run that was not aborted ended.
type Outcome int

const (
	// OutcomeSuccess means every step succeeded, or only the restart failed
	// and the application answered afterwards.
	OutcomeSuccess Outcome = iota
	// OutcomeDegraded means the data was migrated but the application did not
	// answer after the restart.
	OutcomeDegraded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}
