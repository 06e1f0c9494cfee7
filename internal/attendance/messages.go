package attendance

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// messageTemplates holds the operator-facing response texts. Kept in an
// embedded YAML file so the wording can be reviewed and edited without
// touching Go code.
type messageTemplates struct {
	Eligible      string `yaml:"eligible"`
	AlreadyMarked string `yaml:"already_marked"`
	WrongRoom     string `yaml:"wrong_room"`
	WrongTime     string `yaml:"wrong_time"`
	WrongBoth     string `yaml:"wrong_both"`
	NoSessions    string `yaml:"no_sessions"`
	Unidentified  string `yaml:"unidentified"`
	GalleryEmpty  string `yaml:"gallery_empty"`
	NoFace        string `yaml:"no_face"`
}

var templates messageTemplates

func init() {
	if err := yaml.Unmarshal(templatesYAML, &templates); err != nil {
		// Embedded file, so this can only fail on a bad edit of templates.yaml.
		panic("failed to unmarshal embedded templates.yaml: " + err.Error())
	}
}

const clockFormat = "15:04"

// EligibleMessage renders the welcome text after a successful mark.
func EligibleMessage(displayName string, s *Session) string {
	return fmt.Sprintf(templates.Eligible, displayName, s.CourseName, s.Type)
}

// AlreadyMarkedMessage renders the idempotent-duplicate text, carrying the
// original mark time.
func AlreadyMarkedMessage(s *Session, markedAt time.Time) string {
	return fmt.Sprintf(templates.AlreadyMarked, s.CourseName, markedAt.Format(clockFormat))
}

// Message renders the human-readable explanation for one diagnostic.
func (d Diagnostic) Message() string {
	s := d.Session
	switch d.Kind {
	case WrongRoom:
		return fmt.Sprintf(templates.WrongRoom, s.CourseName, s.Type, s.RoomID)
	case WrongTime:
		return fmt.Sprintf(templates.WrongTime, s.CourseName, s.Type, s.StartTime.Format(clockFormat))
	default:
		return fmt.Sprintf(templates.WrongBoth, s.CourseName, s.Type, s.RoomID, s.StartTime.Format(clockFormat))
	}
}

// NoSessionsMessage is the text for a student with no classes today.
func NoSessionsMessage() string { return templates.NoSessions }

// UnidentifiedMessage is the text for a probe no enrolled student matched.
func UnidentifiedMessage() string { return templates.Unidentified }

// GalleryEmptyMessage is the text for a scan against an empty gallery.
func GalleryEmptyMessage() string { return templates.GalleryEmpty }

// NoFaceMessage is the text for an image with no detectable face.
func NoFaceMessage() string { return templates.NoFace }
