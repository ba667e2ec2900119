package backup

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/usecase"
)

const formatVersion = 1

// Record types, written in this order after the meta record.
const (
	TypeMeta       = "meta"
	TypeCourse     = "course"
	TypeYear       = "academic_year"
	TypeModule     = "module"
	TypeAssessment = "assessment"
)

var recordTypes = []string{TypeCourse, TypeYear, TypeModule, TypeAssessment}

var (
	errNoCourse    = errors.New("backup: no course to export")
	errMissingMeta = errors.New("backup: missing meta record")
)

type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

// Service streams a course tree to and from newline-delimited JSON.
type Service struct {
	tree usecase.CourseTree
	now  func() time.Time
}

// NewService binds a backup service to a loaded course tree.
func NewService(tree usecase.CourseTree) *Service {
	return &Service{tree: tree, now: time.Now}
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	reporter ProgressReporter
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	replace bool
}

// WithReplace resets an existing course before importing instead of failing.
func WithReplace(replace bool) ImportOption {
	return func(cfg *importConfig) {
		cfg.replace = replace
	}
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	Tables     []string       `json:"tables,omitempty"`
	RowCounts  map[string]int `json:"row_counts,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	Tables     []string        `json:"tables"`
	RowCounts  map[string]int  `json:"row_counts"`
	Payload    json.RawMessage `json:"payload"`
}

type coursePayload struct {
	ID          string   `json:"id"`
	Institution string   `json:"institution"`
	Title       string   `json:"title"`
	TargetGrade *float64 `json:"target_grade"`
}

type yearPayload struct {
	ID          string   `json:"id"`
	CourseID    string   `json:"course_id"`
	Label       string   `json:"label"`
	YearNumber  int      `json:"year_number"`
	Weight      float64  `json:"weight"`
	TargetGrade *float64 `json:"target_grade"`
}

type modulePayload struct {
	ID          string   `json:"id"`
	YearID      string   `json:"year_id"`
	Name        string   `json:"name"`
	Credits     int      `json:"credits"`
	TargetGrade *float64 `json:"target_grade"`
}

type assessmentPayload struct {
	ID        string   `json:"id"`
	ModuleID  string   `json:"module_id"`
	Name      string   `json:"name"`
	Weight    float64  `json:"weight"`
	Grade     *float64 `json:"grade"`
	Completed bool     `json:"completed"`
}

// Export writes the loaded course as a meta record followed by one record per
// course, year, module and assessment, parents before children.
func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	course, ok := s.tree.Snapshot()
	if !ok || course == nil {
		return errNoCourse
	}
	rows := flatten(course)

	counts := make(map[string]int, len(recordTypes))
	for _, typ := range recordTypes {
		counts[typ] = len(rows[typ])
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := s.now().UTC()
	meta := record{
		Type:       TypeMeta,
		Version:    formatVersion,
		ExportedAt: &now,
		Tables:     recordTypes,
		RowCounts:  counts,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, typ := range recordTypes {
		if err := ctx.Err(); err != nil {
			return err
		}
		reporter.StartTable(typ, counts[typ])
		for _, payload := range rows[typ] {
			if err := writeRecord(writer, record{Type: typ, Payload: payload}); err != nil {
				return fmt.Errorf("write %s: %w", typ, err)
			}
			reporter.Increment(typ, 1)
		}
		reporter.FinishTable(typ)
	}
	return writer.Flush()
}

func flatten(c *entity.Course) map[string][]any {
	rows := map[string][]any{
		TypeCourse: {coursePayload{ID: c.ID, Institution: c.Institution, Title: c.Title, TargetGrade: c.TargetGrade}},
	}
	for _, y := range c.Years {
		rows[TypeYear] = append(rows[TypeYear], yearPayload{
			ID: y.ID, CourseID: c.ID, Label: y.Label, YearNumber: y.YearNumber, Weight: y.Weight, TargetGrade: y.TargetGrade,
		})
		for _, m := range y.Modules {
			rows[TypeModule] = append(rows[TypeModule], modulePayload{
				ID: m.ID, YearID: y.ID, Name: m.Name, Credits: m.Credits, TargetGrade: m.TargetGrade,
			})
			for _, a := range m.Assessments {
				rows[TypeAssessment] = append(rows[TypeAssessment], assessmentPayload{
					ID: a.ID, ModuleID: m.ID, Name: a.Name, Weight: a.Weight, Grade: a.Grade, Completed: a.Completed,
				})
			}
		}
	}
	return rows
}

// Import reads a backup, rebuilds the course tree and replays it into the session
// tree. The tree must be loaded; an existing course is only replaced with WithReplace.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (*entity.Course, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	course, err := decode(r)
	if err != nil {
		return nil, err
	}

	switch s.tree.State() {
	case usecase.StateEmpty:
	case usecase.StateLoaded:
		if !cfg.replace {
			return nil, entity.ErrCourseExists
		}
		if err := s.tree.ResetCourse(ctx); err != nil {
			return nil, fmt.Errorf("reset course: %w", err)
		}
	default:
		return nil, entity.ErrCourseNotLoaded
	}
	return usecase.RestoreCourse(ctx, s.tree, course)
}

func decode(r io.Reader) (*entity.Course, error) {
	br := bufio.NewReader(r)
	var (
		metaSeen    bool
		meta        rawRecord
		course      *entity.Course
		years       []yearPayload
		modules     []modulePayload
		assessments []assessmentPayload
	)

	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("decode record: %w", err)
			}
			if rec.Type != TypeMeta && len(rec.Payload) == 0 {
				return nil, fmt.Errorf("backup: missing payload for %s", rec.Type)
			}

			switch rec.Type {
			case TypeMeta:
				metaSeen = true
				meta = rec
			case TypeCourse:
				if course != nil {
					return nil, errors.New("backup: more than one course record")
				}
				var p coursePayload
				if err := json.Unmarshal(rec.Payload, &p); err != nil {
					return nil, fmt.Errorf("decode course: %w", err)
				}
				course = &entity.Course{ID: p.ID, Institution: p.Institution, Title: p.Title, TargetGrade: p.TargetGrade}
			case TypeYear:
				var p yearPayload
				if err := json.Unmarshal(rec.Payload, &p); err != nil {
					return nil, fmt.Errorf("decode year: %w", err)
				}
				years = append(years, p)
			case TypeModule:
				var p modulePayload
				if err := json.Unmarshal(rec.Payload, &p); err != nil {
					return nil, fmt.Errorf("decode module: %w", err)
				}
				modules = append(modules, p)
			case TypeAssessment:
				var p assessmentPayload
				if err := json.Unmarshal(rec.Payload, &p); err != nil {
					return nil, fmt.Errorf("decode assessment: %w", err)
				}
				assessments = append(assessments, p)
			default:
				// Unknown record types from newer writers are skipped.
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if !metaSeen {
		return nil, errMissingMeta
	}
	if meta.Version != formatVersion {
		return nil, fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}
	if course == nil {
		return nil, errors.New("backup: missing course record")
	}
	return assemble(course, years, modules, assessments)
}

// assemble attaches children to parents by id, keeping file order among siblings.
func assemble(course *entity.Course, years []yearPayload, modules []modulePayload, assessments []assessmentPayload) (*entity.Course, error) {
	yearIndex := make(map[string]int, len(years))
	for _, p := range years {
		if p.CourseID != course.ID {
			return nil, fmt.Errorf("backup: year %s references unknown course %s", p.ID, p.CourseID)
		}
		yearIndex[p.ID] = len(course.Years)
		course.Years = append(course.Years, entity.AcademicYear{
			ID: p.ID, Label: p.Label, YearNumber: p.YearNumber, Weight: p.Weight, TargetGrade: p.TargetGrade,
		})
	}

	type slot struct{ year, module int }
	moduleIndex := make(map[string]slot, len(modules))
	for _, p := range modules {
		yi, ok := yearIndex[p.YearID]
		if !ok {
			return nil, fmt.Errorf("backup: module %s references unknown year %s", p.ID, p.YearID)
		}
		year := &course.Years[yi]
		moduleIndex[p.ID] = slot{year: yi, module: len(year.Modules)}
		year.Modules = append(year.Modules, entity.Module{
			ID: p.ID, Name: p.Name, Credits: p.Credits, TargetGrade: p.TargetGrade,
		})
	}

	for _, p := range assessments {
		at, ok := moduleIndex[p.ModuleID]
		if !ok {
			return nil, fmt.Errorf("backup: assessment %s references unknown module %s", p.ID, p.ModuleID)
		}
		module := &course.Years[at.year].Modules[at.module]
		module.Assessments = append(module.Assessments, entity.Assessment{
			ID: p.ID, Name: p.Name, Weight: p.Weight, Grade: p.Grade, Completed: p.Completed,
		})
	}
	return course, nil
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return err
	}
	return nil
}
