package models

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityDanger  Severity = "danger"
)

type Message struct {
	Title    string
	Text     string
	Severity Severity
}
