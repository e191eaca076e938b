package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tsawler/patro"
	"github.com/tsawler/patro/bsdate"
	"github.com/tsawler/patro/content"
	"github.com/tsawler/patro/internal/logger"
	"github.com/tsawler/patro/model"
	"github.com/tsawler/patro/monthgrid"
	"github.com/tsawler/patro/paper"
	"github.com/tsawler/patro/render"
)

// HeaderWarnings carries the number of generation warnings on PDF
// responses.
const HeaderWarnings = "X-Patro-Warnings"

// BSDate is the JSON form of a BS date.
type BSDate struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	MonthName string `json:"monthName"`
	Weekday   string `json:"weekday"`
	ISO       string `json:"iso"`
}

func toBSDate(d bsdate.Date) BSDate {
	return BSDate{
		Year:      d.Year,
		Month:     d.Month,
		Day:       d.Day,
		MonthName: d.MonthName,
		Weekday:   d.Weekday.String(),
		ISO:       d.ISO(),
	}
}

// Conversion is the response of both conversion endpoints.
type Conversion struct {
	AD string `json:"ad"`
	BS BSDate `json:"bs"`
	// Exact is false when the conversion did not reproduce its input
	// (BS to AD) or had to clamp it (AD to BS).
	Exact      bool `json:"exact"`
	Iterations int  `json:"iterations,omitempty"`
}

// GridCell is one cell of a grid response.
type GridCell struct {
	Kind        string `json:"kind"`
	BSDay       int    `json:"bsDay,omitempty"`
	AD          string `json:"ad,omitempty"`
	Saturday    bool   `json:"saturday"`
	Today       bool   `json:"today,omitempty"`
	Approximate bool   `json:"approximate,omitempty"`
	Events      int    `json:"events,omitempty"`
}

// Grid is the response of the grid endpoint.
type Grid struct {
	Year          int        `json:"year"`
	Month         int        `json:"month"`
	MonthName     string     `json:"monthName"`
	Days          int        `json:"days"`
	LeadingBlanks int        `json:"leadingBlanks"`
	Cells         []GridCell `json:"cells"`
}

// CalendarRequest is the optional body of a calendar request.
type CalendarRequest struct {
	Title  string               `json:"title"`
	Months []int                `json:"months" validate:"dive,min=1,max=12"`
	Events []content.Event      `json:"events" validate:"dive"`
	Themes []content.ThemeImage `json:"themes" validate:"dive"`
}

func badRequest(format string, args ...any) error {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, badRequest("%s must be an integer", name)
	}
	return v, nil
}

func (s *Server) convertAD(c echo.Context) error {
	t, err := content.ParseDate(c.Param("date"))
	if err != nil {
		return badRequest("date must be YYYY-MM-DD")
	}
	bs := bsdate.ToBS(t)
	return c.JSON(http.StatusOK, Conversion{
		AD:    t.Format("2006-01-02"),
		BS:    toBSDate(bs),
		Exact: !bs.Clamped,
	})
}

func (s *Server) convertBS(c echo.Context) error {
	year, err := intParam(c, "year")
	if err != nil {
		return err
	}
	month, err := intParam(c, "month")
	if err != nil {
		return err
	}
	day, err := intParam(c, "day")
	if err != nil {
		return err
	}

	d, err := bsdate.New(day, month, year)
	if err != nil {
		return badRequest("%v", err)
	}
	conv := bsdate.ToAD(day, month, year)
	return c.JSON(http.StatusOK, Conversion{
		AD:         conv.Time.Format("2006-01-02"),
		BS:         toBSDate(d),
		Exact:      conv.Exact,
		Iterations: conv.Iterations,
	})
}

func (s *Server) monthGrid(c echo.Context) error {
	year, err := intParam(c, "year")
	if err != nil {
		return err
	}
	month, err := intParam(c, "month")
	if err != nil {
		return err
	}
	if year < 1 || month < 1 || month > 12 {
		return badRequest("no such month %d/%d", year, month)
	}

	g := monthgrid.Build(month, year, nil, s.now(), nil)
	resp := Grid{
		Year:          year,
		Month:         month,
		MonthName:     bsdate.MonthName(month),
		Days:          bsdate.MonthLength(month, year),
		LeadingBlanks: g.LeadingBlanks,
		Cells:         make([]GridCell, 0, monthgrid.Size),
	}
	for _, cell := range g.Cells {
		gc := GridCell{Kind: cell.Kind.String(), Saturday: cell.IsSaturday}
		if cell.Kind == monthgrid.Day {
			gc.BSDay = cell.BSDay
			gc.AD = cell.AD.Format("2006-01-02")
			gc.Today = cell.IsToday
			gc.Approximate = cell.Approximate
			gc.Events = len(cell.Events)
		}
		resp.Cells = append(resp.Cells, gc)
	}
	return c.JSON(http.StatusOK, resp)
}

// paperSize reads the paper query parameter, falling back to the
// configured default.
func (s *Server) paperSize(c echo.Context) (paper.Size, error) {
	name := c.QueryParam("paper")
	if name == "" {
		return s.config.Document.PaperSize(), nil
	}
	size, err := paper.ParseSize(name)
	if err != nil {
		return 0, badRequest("%v", err)
	}
	return size, nil
}

func (s *Server) calendarPDF(c echo.Context) error {
	file := c.Param("file")
	yearText, ok := strings.CutSuffix(file, ".pdf")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "calendars are served as <year>.pdf")
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return badRequest("year must be an integer")
	}
	size, err := s.paperSize(c)
	if err != nil {
		return err
	}

	var req CalendarRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return badRequest("%v", err)
	}

	b := patro.Calendar(year).
		Paper(size).
		Events(req.Events...).
		Themes(req.Themes...).
		Today(s.now()).
		Fetcher(s.fetcher).
		Contact(s.config.Document.ContactText, s.config.Document.ContactURL).
		Logger(s.requestLogger(c).Zap())
	if len(req.Months) > 0 {
		b = b.Months(req.Months...)
	}
	if req.Title != "" {
		b = b.Title(req.Title)
	}
	if s.font != nil {
		b = b.FallbackFont(s.font)
	}

	return s.servePDF(c, "calendar", fmt.Sprintf("calendar-%d.pdf", year), size, b.Render)
}

func (s *Server) chapterPDF(c echo.Context) error {
	size, err := s.paperSize(c)
	if err != nil {
		return err
	}
	var ch content.Chapter
	if err := c.Bind(&ch); err != nil {
		return err
	}
	if err := c.Validate(&ch); err != nil {
		return badRequest("%v", err)
	}

	b := patro.Chapter(ch).
		Paper(size).
		Fetcher(s.fetcher).
		Contact(s.config.Document.ContactText, s.config.Document.ContactURL).
		Logger(s.requestLogger(c).Zap())
	if s.font != nil {
		b = b.FallbackFont(s.font)
	}

	name := "chapter.pdf"
	if ch.ID != "" {
		name = "chapter-" + ch.ID + ".pdf"
	}
	return s.servePDF(c, "chapter", name, size, b.Render)
}

type renderFunc func(ctx context.Context, s render.Surface) (*model.Document, []patro.Warning, error)

// servePDF runs one generation at a time and writes the PDF. The
// generation timeout starts once the request holds the generation lock, so
// time spent queued does not count against it. Invalid input is a 400; a
// timeout is a 503; anything else that stops generation is a 500.
func (s *Server) servePDF(c echo.Context, kind, filename string, size paper.Size, run renderFunc) error {
	s.generate.Lock()
	defer s.generate.Unlock()

	if err := c.Request().Context().Err(); err != nil {
		// The client left while queued.
		return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled").SetInternal(err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.config.Server.GenerateTimeout)
	defer cancel()

	start := time.Now()
	cfg := render.DefaultPDFConfig()
	cfg.Logger = s.requestLogger(c).Zap()
	pdf := render.NewPDFWithConfig(paper.Resolve(size), cfg)

	doc, warnings, err := run(ctx, pdf)
	var buf bytes.Buffer
	if err == nil {
		err = pdf.Write(&buf)
	}

	pages := 0
	if doc != nil {
		pages = doc.PageCount()
	}
	elapsed := time.Since(start)
	s.observeGeneration(kind, pages, warnings, elapsed, err)
	s.requestLogger(c).LogGeneration(kind, pages, len(warnings), elapsed, err)

	if err != nil {
		switch {
		case errors.Is(err, patro.ErrInvalidYear), errors.Is(err, patro.ErrInvalidMonth), errors.Is(err, patro.ErrEmptyChapter):
			return badRequest("%v", err)
		case errors.Is(err, context.DeadlineExceeded):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "generation timed out").SetInternal(err)
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "generation failed").SetInternal(err)
		}
	}

	h := c.Response().Header()
	h.Set(HeaderWarnings, strconv.Itoa(len(warnings)))
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) requestLogger(c echo.Context) *logger.Logger {
	return s.logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID))
}
