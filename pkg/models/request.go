package models

// ScrapeRequest is the input of a scrape-jd run
type ScrapeRequest struct {
	InputPath  string `validate:"required"`
	OutputPath string `validate:"required"`
	CDPURL     string
}

// ApplyRequest is the input of an apply-dry-run run
type ApplyRequest struct {
	InputPath string `validate:"required"`
	CDPURL    string
	Limit     int `validate:"gte=1"`
}

// CollectRequest is the input of a collect-urls run
type CollectRequest struct {
	StartURL   string `validate:"required,url"`
	OutputPath string `validate:"required"`
	CDPURL     string
	MaxPages   int `validate:"gte=1"`
	MaxJobs    int `validate:"gte=1"`
}
