package events

const (
	NoteCreated      = "NOTE_CREATED"
	NoteUpdated      = "NOTE_UPDATED"
	NoteArchived     = "NOTE_ARCHIVED"
	NoteRestored     = "NOTE_RESTORED"
	NoteDeleted      = "NOTE_DELETED"
	NoteStageChanged = "NOTE_STAGE_CHANGED"
	StageDeleted     = "STAGE_DELETED"
)
