package recovery

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/encoding/charmap"

	"github.com/samcharles93/wasmrev/internal/mixer"
)

// Text is the secret decoded as ISO-8859-1.
func (r *Result) Text() string {
	return Latin1(r.Secret[:])
}

func (r *Result) Hex() string {
	return r.Secret.String()
}

// Flag wraps the secret text as prefix{text}.
func (r *Result) Flag(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "{" + r.Text() + "}"
}

// Latin1 decodes b byte-for-byte as ISO-8859-1.
func Latin1(b []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// Printable replaces bytes outside printable ASCII with '.'.
func Printable(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			sb.WriteByte(c)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// Report is the JSON form of a Result.
type Report struct {
	ID           string       `json:"id,omitempty"`
	KeyOffset    uint32       `json:"key_offset"`
	Key          string       `json:"key"`
	TargetOffset uint32       `json:"target_offset"`
	Target       string       `json:"target"`
	Secret       string       `json:"secret"`
	SecretHex    string       `json:"secret_hex"`
	Verified     bool         `json:"verified"`
	Flag         string       `json:"flag"`
	Steps        []StepReport `json:"steps,omitempty"`
}

type StepReport struct {
	Index  int    `json:"index"`
	Mixed  string `json:"mixed"`
	Shift  uint   `json:"shift"`
	Dir    string `json:"dir"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Report builds the JSON view of r. Steps are included when withSteps is set.
func (r *Result) Report(prefix string, withSteps bool) Report {
	rep := Report{
		KeyOffset:    r.KeyOffset,
		Key:          r.Key.String(),
		TargetOffset: r.TargetOffset,
		Target:       r.Target.String(),
		Secret:       r.Text(),
		SecretHex:    r.Hex(),
		Verified:     r.Verified,
		Flag:         r.Flag(prefix),
	}
	if withSteps {
		rep.Steps = StepReports(r.Steps)
	}
	return rep
}

func StepReports(steps []mixer.Step) []StepReport {
	out := make([]StepReport, 0, len(steps))
	for _, s := range steps {
		out = append(out, StepReport{
			Index:  s.Index,
			Mixed:  fmt.Sprintf("%02x", s.Mixed),
			Shift:  s.Shift,
			Dir:    s.Dir.String(),
			Before: s.Before.String(),
			After:  s.After.String(),
		})
	}
	return out
}

// MarshalIndent renders the report as indented JSON.
func (rep Report) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}
