package app

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strings"

	"github.com/lmaidana/superfood/internal/adapters/backend"
	"github.com/lmaidana/superfood/internal/adapters/httpserver"
	"github.com/lmaidana/superfood/internal/adapters/scraper"
	"github.com/lmaidana/superfood/internal/views"
)

type App struct {
	Tmpl    *template.Template
	Backend *backend.Client
	Images  *scraper.ImageScraper
	Secret  []byte
}

func NewApp() (*App, error) {
	client := backend.New(os.Getenv("API_BASE_URL"))

	secret := os.Getenv("SESSION_KEY")
	if secret == "" {
		secret = "dev-insecure"
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"mul": func(a, b float64) float64 { return a * b },
		"ars": func(v float64) string {
			s := fmt.Sprintf("%.0f", v)
			n := len(s)
			neg := false
			if n > 0 && s[0] == '-' {
				neg = true
				s = s[1:]
				n--
			}
			if n <= 3 {
				if neg {
					return "ARS -" + s
				}
				return "ARS " + s
			}
			rem := n % 3
			if rem == 0 {
				rem = 3
			}
			out := s[:rem]
			for i := rem; i < n; i += 3 {
				out += "." + s[i:i+3]
			}
			if neg {
				out = "-" + out
			}
			return "ARS " + out
		},
		"img": func(u string) string {
			s := strings.TrimSpace(u)
			if s == "" {
				return s
			}
			if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "/") {
				s = "/" + s
			}
			s = strings.ReplaceAll(s, " ", "%20")
			return s
		},
	}

	appEnv := strings.ToLower(os.Getenv("APP_ENV"))
	isDev := appEnv == "" || appEnv == "development" || appEnv == "dev"

	var tmpl *template.Template
	var err error
	if isDev {
		tmpl, err = template.New("layout").Funcs(funcMap).ParseGlob("internal/views/*.html")
	} else {
		tmpl, err = template.New("layout").Funcs(funcMap).ParseFS(views.FS, "*.html")
	}
	if err != nil {
		return nil, err
	}

	return &App{
		Tmpl:    tmpl,
		Backend: client,
		Images:  scraper.NewImageScraper(),
		Secret:  []byte(secret),
	}, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Tmpl, a.Backend, a.Backend, a.Backend, a.Images, a.Secret)
}
