package models

// ModelRegistry lists every model passed to AutoMigrate.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
	&WaitlistCounter{},
	&ConfirmationRecord{},
}
