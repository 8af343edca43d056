// Package export renders an operation into a word-processor document and
// writes it to disk.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ALT-F4-LLC/eagleeye/internal/model"
)

// ContentType is the media type word processors associate with .doc files.
// They open an HTML body saved under this type as a regular document.
const ContentType = "application/msword"

// bom marks the payload as UTF-8 for word processors that would otherwise
// guess a legacy code page.
const bom = "\ufeff"

const filenamePrefix = "Planejamento_"

var whitespaceRun = regexp.MustCompile(`\s+`)

// safePhoto matches the data URIs the downscaler produces. Anything else is
// left out of the document.
var safePhoto = regexp.MustCompile(`^data:image/(jpeg|png|gif|webp);base64,[A-Za-z0-9+/]+=*$`)

// Options controls optional document sections.
type Options struct {
	IncludePhotos bool
}

// Document is a rendered export ready to be written.
type Document struct {
	Filename    string
	ContentType string
	HTML        string
}

// Bytes returns the file contents: a byte-order mark followed by the HTML.
func (d *Document) Bytes() []byte {
	return []byte(bom + d.HTML)
}

// WriteTo writes the file contents to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.Bytes())
	return int64(n), err
}

// Filename returns the export file name for op: the operation name with
// every whitespace run replaced by an underscore, leading and trailing runs
// included. Path separators are replaced too, so the name always stays
// inside the export directory.
func Filename(op model.Operation) string {
	name := whitespaceRun.ReplaceAllString(op.Name, "_")
	name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	return filenamePrefix + name + ".doc"
}

type photoView struct {
	Label string
	Src   template.URL
}

type targetView struct {
	Name        string
	Address     string
	Coordinates string
	Description string
	Leader      string
	Members     string
	Vehicles    string
	Photos      []photoView
}

type docView struct {
	Title            string
	Date             string
	BriefingLocation string
	BriefingTime     string
	Targets          []targetView
}

var docTemplate = template.Must(template.New("doc").Parse(`<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>RELATÓRIO DE PLANEJAMENTO OPERACIONAL: {{.Title}}</h1>
<p><strong>Data:</strong> {{.Date}}</p>
<p><strong>Local de Briefing:</strong> {{.BriefingLocation}}</p>
<p><strong>Horário de Briefing:</strong> {{.BriefingTime}}</p>
<hr/>
<h2>ALVOS E EQUIPES</h2>
{{- range .Targets}}
<div style="margin-bottom: 20px; border: 1px solid #ccc; padding: 10px;">
<h3>Alvo: {{.Name}}</h3>
<p><strong>Endereço:</strong> {{.Address}}</p>
{{- if .Coordinates}}
<p><strong>Coordenadas:</strong> {{.Coordinates}}</p>
{{- end}}
<p><strong>Descrição:</strong> {{.Description}}</p>
<p><strong>Líder da Equipe:</strong> {{.Leader}}</p>
<p><strong>Efetivo:</strong> {{.Members}}</p>
<p><strong>Viaturas:</strong> {{.Vehicles}}</p>
{{- range .Photos}}
<p><strong>{{.Label}}:</strong><br/><img src="{{.Src}}" alt="{{.Label}}"/></p>
{{- end}}
</div>
{{- end}}
</body>
</html>
`))

// Render produces the document for op. Every user-supplied field goes
// through html/template's contextual escaping.
func Render(op model.Operation, opts Options) (*Document, error) {
	view := docView{
		Title:            cases.Upper(language.Und).String(op.Name),
		Date:             op.Date,
		BriefingLocation: op.BriefingLocation,
		BriefingTime:     op.BriefingTime,
		Targets:          make([]targetView, 0, len(op.Targets)),
	}

	for _, t := range op.Targets {
		tv := targetView{
			Name:        t.Name,
			Address:     t.Address,
			Description: t.Description,
			Leader:      t.Team.Leader,
			Members:     strings.Join(t.Team.MemberLabels(), ", "),
			Vehicles:    strings.Join(t.Team.Vehicles, ", "),
		}
		if t.Coordinates != nil {
			tv.Coordinates = t.Coordinates.String()
		}
		if opts.IncludePhotos {
			tv.Photos = photos(t)
		}
		view.Targets = append(view.Targets, tv)
	}

	var buf bytes.Buffer
	if err := docTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	return &Document{
		Filename:    Filename(op),
		ContentType: ContentType,
		HTML:        buf.String(),
	}, nil
}

func photos(t model.Target) []photoView {
	var out []photoView
	for _, p := range []struct {
		label   string
		payload string
	}{
		{"Foto do Suspeito", t.SuspectPhoto},
		{"Foto do Local", t.LocationPhoto},
	} {
		if safePhoto.MatchString(p.payload) {
			// Matched against a strict data-URI pattern above.
			out = append(out, photoView{Label: p.label, Src: template.URL(p.payload)})
		}
	}
	return out
}

// WriteFile writes doc into dir and returns the final path. Content goes to
// a temporary file first; the temporary file is always released, and the
// destination only appears once it is complete.
func WriteFile(doc *Document, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := doc.WriteTo(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing document: %w", err)
	}

	dest := filepath.Join(dir, doc.Filename)
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("saving document: %w", err)
	}
	return dest, nil
}

// ExportToDoc renders op and writes it into dir.
func ExportToDoc(op model.Operation, dir string, opts Options) (string, error) {
	doc, err := Render(op, opts)
	if err != nil {
		return "", err
	}
	return WriteFile(doc, dir)
}
