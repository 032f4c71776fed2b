package web

// handlers_import.go serves the catalog, the mapping preview and the import
// itself. Both import endpoints accept either a JSON body carrying the text
// or a form (multipart or urlencoded) with a "file" upload or a "text" field.
// Spreadsheet uploads are converted to tab-delimited text first.

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/LeadTracker/internal/core"
	"github.com/JonMunkholm/LeadTracker/internal/web/templates"
)

// multipartOverhead is allowed on top of IMPORT_MAX_FILE_SIZE for form
// fields and part headers.
const multipartOverhead = 1 << 20

var errNoFile = errors.New("no file provided")

// importInput is a decoded import or preview request.
type importInput struct {
	Text     string
	Campaign core.CampaignTarget
	// Mapping is nil when the client wants the automatic mapping.
	Mapping core.FieldMapping
}

type importJSON struct {
	Text            string            `json:"text"`
	CampaignID      string            `json:"campaign_id"`
	NewCampaignName string            `json:"new_campaign_name"`
	Mapping         map[string]string `json:"mapping"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Catalog())
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	in, err := s.readImportInput(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	preview, err := s.service.PreviewImport(in.Text, in.Mapping)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		renderFragment(w, r, http.StatusOK, templates.MappingForm(preview, s.service.Catalog()))
		return
	}
	writeJSON(w, r, http.StatusOK, preview)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	in, err := s.readImportInput(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.service.Import(r.Context(), core.ImportText{
		Campaign: in.Campaign,
		Text:     in.Text,
		Mapping:  in.Mapping,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Trigger", "leads-imported")
		renderFragment(w, r, http.StatusCreated, templates.ImportSummary(result))
		return
	}
	writeJSON(w, r, http.StatusCreated, result)
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.LimiterStatus())
}

func (s *Server) readImportInput(w http.ResponseWriter, r *http.Request) (importInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+multipartOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return readImportJSON(r)
	}
	return s.readImportForm(r)
}

func readImportJSON(r *http.Request) (importInput, error) {
	var body importJSON
	dec := jsonDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return importInput{}, err
		}
		return importInput{}, invalidRequest("decode body: %v", err)
	}
	return buildImportInput(body)
}

func (s *Server) readImportForm(r *http.Request) (importInput, error) {
	err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return importInput{}, err
	}

	body := importJSON{
		CampaignID:      r.FormValue("campaign_id"),
		NewCampaignName: r.FormValue("new_campaign_name"),
		Mapping:         formMapping(r),
	}

	text, err := s.readUpload(r)
	switch {
	case errors.Is(err, errNoFile):
		text = r.FormValue("text")
		if strings.TrimSpace(text) == "" {
			return importInput{}, errNoFile
		}
	case err != nil:
		return importInput{}, err
	}
	body.Text = text

	return buildImportInput(body)
}

// readUpload returns the text of the "file" part.
func (s *Server) readUpload(r *http.Request) (string, error) {
	if r.MultipartForm == nil {
		return "", errNoFile
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", errNoFile
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	if header.Size > s.cfg.Import.MaxFileSize {
		return "", core.ErrFileTooLarge
	}
	return core.ReadUpload(header.Filename, file, s.cfg.Import.MaxFileSize)
}

// formMapping collects "mapping[Header]=field" pairs as sent by templates.MappingForm.
// No such fields means the automatic mapping.
func formMapping(r *http.Request) map[string]string {
	var m map[string]string
	for key, vals := range r.Form {
		header, ok := strings.CutPrefix(key, "mapping[")
		if !ok || !strings.HasSuffix(header, "]") || len(vals) == 0 {
			continue
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[strings.TrimSuffix(header, "]")] = vals[len(vals)-1]
	}
	return m
}

func buildImportInput(body importJSON) (importInput, error) {
	in := importInput{
		Text:     body.Text,
		Campaign: core.CampaignTarget{NewName: strings.TrimSpace(body.NewCampaignName)},
	}
	if raw := strings.TrimSpace(body.CampaignID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return importInput{}, invalidRequest("campaign_id %q", raw)
		}
		in.Campaign.ID = id
	}
	if body.Mapping != nil {
		m, err := parseMapping(body.Mapping)
		if err != nil {
			return importInput{}, err
		}
		in.Mapping = m
	}
	return in, nil
}
