package model

// Action names an audited event.
type Action string

const (
	ActionLogin                    Action = "LOGIN"
	ActionLogout                   Action = "LOGOUT"
	ActionTimeout                  Action = "TIMEOUT"
	ActionSwitchUser               Action = "SWITCH_USER"
	ActionCreateRecord             Action = "CREATE_RECORD"
	ActionUpdateRecord             Action = "UPDATE_RECORD"
	ActionLegalHoldApplied         Action = "LEGAL_HOLD_APPLIED"
	ActionLegalHoldReleased        Action = "LEGAL_HOLD_RELEASED"
	ActionComputeDisposalDate      Action = "COMPUTE_DISPOSAL_DATE"
	ActionCertificateOfDestruction Action = "CERTIFICATE_OF_DESTRUCTION"
	ActionCreatePolicy             Action = "CREATE_POLICY"
	ActionUpdatePolicy             Action = "UPDATE_POLICY"
	ActionDeletePolicy             Action = "DELETE_POLICY"
	ActionCreateSchedule           Action = "CREATE_SCHEDULE"
	ActionDeleteSchedule           Action = "DELETE_SCHEDULE"
	ActionAddConnector             Action = "ADD_CONNECTOR"
	ActionUpdateConnector          Action = "UPDATE_CONNECTOR"
	ActionDeleteConnector          Action = "DELETE_CONNECTOR"
	ActionPauseConnector           Action = "PAUSE_CONNECTOR"
	ActionResumeConnector          Action = "RESUME_CONNECTOR"
	ActionSyncConnector            Action = "SYNC_CONNECTOR"
	ActionCreateUser               Action = "CREATE_USER"
	ActionUpdateUser               Action = "UPDATE_USER"
	ActionDeleteUser               Action = "DELETE_USER"
	ActionUpdateConfiguration      Action = "UPDATE_CONFIGURATION"
	ActionDataExport               Action = "DATA_EXPORT"
)
