// Package render builds the static results page the widget navigates to.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	sharedmodels "github.com/markhiner/Hiner.nyc/shared/models"
)

// ResultsFile is the page name under the site directory; it matches the
// widget's navigation target.
const ResultsFile = "results.html"

const dateLayout = "2006-01-02"

var tpl = template.Must(template.New("results").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} Hotels</title>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f6f6f4;color:#111}
.header{padding:28px 20px 10px;text-align:center}
.header h1{margin:0;font-size:30px;letter-spacing:.5px}
.header .sub{color:#555;margin-top:6px}
.wrap{max-width:1080px;margin:0 auto;padding:18px;display:grid;grid-template-columns:repeat(auto-fill,minmax(300px,1fr));gap:18px}
.card{background:#fff;border-radius:14px;overflow:hidden;border:1px solid rgba(0,0,0,.08)}
.card img{width:100%;height:190px;object-fit:cover;display:block}
.card .body{padding:12px 14px}
.card .name{font-weight:700;font-size:17px}
.card .meta{color:#666;font-size:14px;margin-top:4px}
.card .price{font-size:22px;font-weight:800;margin-top:8px}
.empty{text-align:center;color:#666;padding:40px}
.footer{text-align:center;color:#888;font-size:12px;margin:18px 0}
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title}}</h1>
  <div class="sub">{{.Subtitle}}</div>
</div>
{{if .Hotels}}<div class="wrap">
{{range .Hotels}}  <div class="card">
    {{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}">{{end}}
    <div class="body">
      <div class="name">{{if .Link}}<a href="{{.Link}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}</div>
      <div class="meta">{{.StarsText}}{{if .Rating}} · {{printf "%.1f" .Rating}} ({{.Reviews}} reviews){{end}}</div>
      {{if .Price}}<div class="price">{{.Price}}<span style="font-size:13px;color:#666"> / night</span></div>{{end}}
    </div>
  </div>
{{end}}</div>{{else}}<div class="empty">No hotels matched this search.</div>{{end}}
<div class="footer">Generated {{.GeneratedAt}}</div>
</body>
</html>
`))

type card struct {
	sharedmodels.Hotel
	StarsText string
}

type pageData struct {
	Title       string
	Subtitle    string
	Hotels      []card
	GeneratedAt string
}

// Page renders the card gallery for one completed search.
func Page(req sharedmodels.SearchRequest, hotels []sharedmodels.Hotel) ([]byte, error) {
	subtitle := ""
	ci, errIn := time.Parse(dateLayout, req.CheckInDate)
	co, errOut := time.Parse(dateLayout, req.CheckOutDate)
	if errIn == nil && errOut == nil {
		subtitle = FormatDateRange(ci, co)
	}

	cards := make([]card, 0, len(hotels))
	for _, h := range hotels {
		cards = append(cards, card{Hotel: h, StarsText: strings.Repeat("★", h.Stars)})
	}

	var buf bytes.Buffer
	err := tpl.Execute(&buf, pageData{
		Title:       TitleCity(req.Q),
		Subtitle:    subtitle,
		Hotels:      cards,
		GeneratedAt: time.Now().Format(time.RFC1123),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write publishes the page under siteDir. The write goes through a temp file
// and a rename so a navigation arriving mid-publish never sees a torn page.
func Write(siteDir string, page []byte) error {
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(siteDir, ResultsFile+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(page); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(siteDir, ResultsFile))
}

// FormatDateRange formats the stay as "Mon, Jan 2 - Thu, Jan 5"; when the
// stay crosses a year boundary the full weekday and year are spelled out.
func FormatDateRange(ci, co time.Time) string {
	if ci.Year() != co.Year() {
		return fmt.Sprintf("%s - %s", ci.Format("Monday, Jan 2"), co.Format("Monday, Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", ci.Format("Mon, Jan 2"), co.Format("Mon, Jan 2"))
}

// TitleCity title-cases a free-text location, keeping common short forms
// (DC, NYC, LA, USA) upper-cased and preserving space/hyphen separators.
func TitleCity(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	var out strings.Builder
	token := strings.Builder{}

	flush := func() {
		t := token.String()
		token.Reset()
		if t == "" {
			return
		}
		switch t {
		case "dc", "nyc", "la", "usa":
			out.WriteString(strings.ToUpper(t))
		default:
			runes := []rune(t)
			out.WriteString(strings.ToUpper(string(runes[0])) + string(runes[1:]))
		}
	}

	for _, r := range lower {
		if r == ' ' || r == '-' {
			flush()
			out.WriteRune(r)
			continue
		}
		token.WriteRune(r)
	}
	flush()

	return out.String()
}
