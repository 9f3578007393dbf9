package types

type CLI struct {
	ConfigPath string
	LogPath    string
	URL        string
	PprofPath  string
	Serve      ServeParams
	Ingest     IngestParams
	Show       ShowParams
}

type ServeParams struct {
	Listen    string
	Database  string
	WebDir    string
	NoBrowser bool
}

type IngestParams struct {
	Database string
}

type ShowParams struct {
	Format string
}
