package app

const (
	Name           = "utcstamp"
	ConfigFilename = "config.json"
	DBFilename     = "sessions.db"
	LogFilename    = "utcstamp.log"
	WriterCapacity = 256
)
