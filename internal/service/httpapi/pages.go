package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/vladislavdragonenkov/paysheet/internal/deeplink"
	"github.com/vladislavdragonenkov/paysheet/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// pageData - данные страницы со стратегией возврата. Plan сериализуется
// в JSON внутри <script> и исполняется общим клиентским раннером.
type pageData struct {
	Title         string
	Description   string
	Plan          deeplink.Plan
	AppBase       string
	BounceRoute   string
	SDKURL        string
	Simulate      bool
	RedirectMode  string
	AutoCaptureID string
	Cancelled     bool
	Currency      string
	Amount        string
}

type indexEntry struct {
	Path  string
	Name  string
	Title string
}

type indexData struct {
	AppBase   string
	Processor string
	Version   string
	BounceURL string
	Pages     []indexEntry
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	aliases := make(map[string]string, len(inlineRoutes))
	for _, route := range inlineRoutes {
		aliases[route.Plan] = route.Path
	}

	plans := s.catalog.Plans()
	entries := make([]indexEntry, 0, len(plans))
	for _, plan := range plans {
		path, ok := aliases[plan.Name]
		if !ok {
			path = "/inline/" + url.PathEscape(plan.Name)
		}
		entries = append(entries, indexEntry{Path: path, Name: plan.Name, Title: plan.Title})
	}

	s.render(w, "index.html", indexData{
		AppBase:   deeplink.AppBase(s.settings.Scheme, s.settings.RedirectPath),
		Processor: s.settings.Processor,
		Version:   s.settings.Version,
		BounceURL: deeplink.BounceURL("TEST123"),
		Pages:     entries,
	})
}

func (s *Server) inlinePage(planName string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.renderInline(w, planName)
	}
}

func (s *Server) handleStrategyPage(w http.ResponseWriter, r *http.Request) {
	s.renderInline(w, r.PathValue("strategy"))
}

func (s *Server) renderInline(w http.ResponseWriter, planName string) {
	plan, err := s.catalog.Lookup(planName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), nil)
		return
	}

	data := s.newPageData(plan)
	if !s.settings.Simulate {
		data.SDKURL = s.sdkURL()
	}
	s.metrics.RecordPageView(plan.Name)
	s.render(w, "page.html", data)
}

// handleReturn - страница, на которую провайдер возвращает плательщика
// после одобрения. token здесь является идентификатором заказа.
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode, err := domain.ParseMode(query.Get("mode"))
	if err != nil {
		mode = domain.ModeNone
	}

	plan, err := s.catalog.ForMode(mode)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), nil)
		return
	}

	data := s.newPageData(plan)
	data.Title = "Return: " + plan.Title
	data.AutoCaptureID = query.Get("token")
	data.Cancelled = query.Has("cancelled")
	s.metrics.RecordPageView(plan.Name)
	s.render(w, "page.html", data)
}

func (s *Server) handleRedirectFlow(w http.ResponseWriter, r *http.Request) {
	mode, err := domain.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	plan, err := s.catalog.ForMode(mode)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), nil)
		return
	}

	data := s.newPageData(plan)
	data.Title = "Redirect flow (mode=" + string(mode) + ")"
	data.Description = "The order is created on the server; the processor returns to /return, which captures and runs the strategy."
	data.RedirectMode = string(mode)
	if data.RedirectMode == "" {
		data.RedirectMode = string(domain.ModeFix)
	}
	s.render(w, "page.html", data)
}

// handleBounce отвечает 302 на ссылку приложения. Страница, попавшая сюда
// через top-level навигацию, передаёт переход на custom scheme самому браузеру.
func (s *Server) handleBounce(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	target := deeplink.Target(s.settings.Scheme, s.settings.RedirectPath, id)

	s.checkout.RecordBounce(id, target)
	s.logger.WithField("target", target).Debug("deeplink bounce")

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusFound)
}

func (s *Server) newPageData(plan deeplink.Plan) pageData {
	opts := s.checkout.Options()
	return pageData{
		Title:       plan.Title,
		Description: plan.Description,
		Plan:        plan,
		AppBase:     deeplink.AppBase(s.settings.Scheme, s.settings.RedirectPath),
		BounceRoute: deeplink.BounceRoute,
		Simulate:    s.settings.Simulate,
		Currency:    opts.Currency,
		Amount:      opts.Amount,
	}
}

func (s *Server) sdkURL() string {
	if s.settings.SDKURL == "" {
		return ""
	}
	params := url.Values{}
	params.Set("client-id", s.settings.ClientID)
	params.Set("currency", s.checkout.Options().Currency)
	params.Set("intent", "capture")
	params.Set("components", "buttons")
	return s.settings.SDKURL + "?" + params.Encode()
}

// render исполняет шаблон в буфер, чтобы ошибка не оставила полуотправленную страницу.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.WithError(err).WithField("template", name).Error("render failed")
		writeError(w, http.StatusInternalServerError, "render failed", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
