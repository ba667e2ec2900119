package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/samber/lo"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/infrastructure/database"
	"github.com/eslsoft/gradebook/internal/repository"
)

const (
	tableCourses     = "courses"
	tableYears       = "academic_years"
	tableModules     = "modules"
	tableAssessments = "assessments"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (stdsql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*stdsql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *stdsql.Row
}

// CourseRepository stores course trees in four relational tables linked by
// cascading foreign keys.
type CourseRepository struct {
	db      *stdsql.DB
	dialect string
	newID   func() string
	now     func() time.Time
}

// NewCourseRepository constructs a relational course repository.
func NewCourseRepository(db *database.DB) repository.CourseRepository {
	return &CourseRepository{
		db:      db.DB,
		dialect: db.Dialect,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

func (r *CourseRepository) builder() *sql.DialectBuilder {
	return sql.Dialect(r.dialect)
}

func (r *CourseRepository) FetchCourse(ctx context.Context, userID string) (*entity.Course, error) {
	var course *entity.Course
	err := r.withTx(ctx, func(tx *stdsql.Tx) error {
		var err error
		course, err = r.fetchCourse(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *CourseRepository) fetchCourse(ctx context.Context, q querier, userID string) (*entity.Course, error) {
	query, args := r.builder().
		Select("id", "user_id", "institution", "title", "target_grade").
		From(sql.Table(tableCourses)).
		Where(sql.EQ("user_id", userID)).
		Query()

	var (
		course entity.Course
		target stdsql.NullFloat64
	)
	err := q.QueryRowContext(ctx, query, args...).Scan(&course.ID, &course.UserID, &course.Institution, &course.Title, &target)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("fetch course", err)
	}
	course.TargetGrade = nullFloat(target)

	years, err := r.fetchYears(ctx, q, course.ID)
	if err != nil {
		return nil, err
	}
	course.Years = years
	return &course, nil
}

func (r *CourseRepository) fetchYears(ctx context.Context, q querier, courseID string) ([]entity.AcademicYear, error) {
	query, args := r.builder().
		Select("id", "label", "year_number", "weight", "target_grade").
		From(sql.Table(tableYears)).
		Where(sql.EQ("course_id", courseID)).
		OrderBy("year_number", "position").
		Query()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("fetch years", err)
	}
	defer rows.Close()

	var years []entity.AcademicYear
	for rows.Next() {
		var (
			y      entity.AcademicYear
			target stdsql.NullFloat64
		)
		if err := rows.Scan(&y.ID, &y.Label, &y.YearNumber, &y.Weight, &target); err != nil {
			return nil, storageError("scan year", err)
		}
		y.TargetGrade = nullFloat(target)
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("fetch years", err)
	}
	if len(years) == 0 {
		return years, nil
	}

	modules, err := r.fetchModules(ctx, q, lo.Map(years, func(y entity.AcademicYear, _ int) string { return y.ID }))
	if err != nil {
		return nil, err
	}
	for i := range years {
		years[i].Modules = modules[years[i].ID]
	}
	return years, nil
}

// fetchModules returns modules grouped by year id, each with its assessments.
func (r *CourseRepository) fetchModules(ctx context.Context, q querier, yearIDs []string) (map[string][]entity.Module, error) {
	query, args := r.builder().
		Select("id", "year_id", "name", "credits", "target_grade").
		From(sql.Table(tableModules)).
		Where(sql.In("year_id", toAny(yearIDs)...)).
		OrderBy("position").
		Query()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("fetch modules", err)
	}
	defer rows.Close()

	type owned struct {
		yearID string
		module entity.Module
	}
	var list []owned
	for rows.Next() {
		var (
			o      owned
			target stdsql.NullFloat64
		)
		if err := rows.Scan(&o.module.ID, &o.yearID, &o.module.Name, &o.module.Credits, &target); err != nil {
			return nil, storageError("scan module", err)
		}
		o.module.TargetGrade = nullFloat(target)
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("fetch modules", err)
	}

	out := make(map[string][]entity.Module, len(yearIDs))
	if len(list) == 0 {
		return out, nil
	}
	assessments, err := r.fetchAssessments(ctx, q, lo.Map(list, func(o owned, _ int) string { return o.module.ID }))
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.module.Assessments = assessments[o.module.ID]
		out[o.yearID] = append(out[o.yearID], o.module)
	}
	return out, nil
}

func (r *CourseRepository) fetchAssessments(ctx context.Context, q querier, moduleIDs []string) (map[string][]entity.Assessment, error) {
	query, args := r.builder().
		Select("id", "module_id", "name", "weight", "grade", "completed").
		From(sql.Table(tableAssessments)).
		Where(sql.In("module_id", toAny(moduleIDs)...)).
		OrderBy("position").
		Query()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("fetch assessments", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.Assessment, len(moduleIDs))
	for rows.Next() {
		var (
			a        entity.Assessment
			moduleID string
			grade    stdsql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &moduleID, &a.Name, &a.Weight, &grade, &a.Completed); err != nil {
			return nil, storageError("scan assessment", err)
		}
		a.Grade = nullFloat(grade)
		out[moduleID] = append(out[moduleID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("fetch assessments", err)
	}
	return out, nil
}

func (r *CourseRepository) CreateCourse(ctx context.Context, course *entity.Course) (*entity.Course, error) {
	if course.UserID == "" {
		return nil, entity.ErrInvalidUserID
	}
	created := course.Clone()
	created.ID = r.newID()
	now := r.now().UTC()

	err := r.withTx(ctx, func(tx *stdsql.Tx) error {
		query, args := r.builder().
			Insert(tableCourses).
			Columns("id", "user_id", "institution", "title", "target_grade", "created_at", "updated_at").
			Values(created.ID, created.UserID, created.Institution, created.Title, floatArg(created.TargetGrade), now, now).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return entity.ErrCourseExists
			}
			return storageError("insert course", err)
		}
		for i := range created.Years {
			if err := r.insertYear(ctx, tx, created.ID, i, &created.Years[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *CourseRepository) UpdateCourse(ctx context.Context, id string, update entity.CourseUpdate) error {
	b := r.builder().Update(tableCourses).Set("updated_at", r.now().UTC())
	if update.Institution != nil {
		b.Set("institution", *update.Institution)
	}
	if update.Title != nil {
		b.Set("title", *update.Title)
	}
	setNullable(b, "target_grade", update.TargetGrade)

	query, args := b.Where(sql.EQ("id", id)).Query()
	return r.execOne(ctx, r.db, "update course", entity.ErrCourseNotFound, query, args)
}

func (r *CourseRepository) DeleteCourse(ctx context.Context, id string) error {
	query, args := r.builder().Delete(tableCourses).Where(sql.EQ("id", id)).Query()
	return r.execOne(ctx, r.db, "delete course", entity.ErrCourseNotFound, query, args)
}

func (r *CourseRepository) AddYear(ctx context.Context, courseID string, year *entity.AcademicYear) (*entity.AcademicYear, error) {
	created := year.Clone()
	created.Modules = nil
	err := r.withTx(ctx, func(tx *stdsql.Tx) error {
		if err := r.mustExist(ctx, tx, tableCourses, courseID, entity.ErrCourseNotFound); err != nil {
			return err
		}
		pos, err := r.nextPosition(ctx, tx, tableYears, "course_id", courseID)
		if err != nil {
			return err
		}
		return r.insertYear(ctx, tx, courseID, pos, &created)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// insertYear assigns an id to y and inserts it with any modules it carries.
func (r *CourseRepository) insertYear(ctx context.Context, q querier, courseID string, pos int, y *entity.AcademicYear) error {
	y.ID = r.newID()
	query, args := r.builder().
		Insert(tableYears).
		Columns("id", "course_id", "label", "year_number", "weight", "target_grade", "position").
		Values(y.ID, courseID, y.Label, y.YearNumber, y.Weight, floatArg(y.TargetGrade), pos).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return storageError("insert year", err)
	}
	for i := range y.Modules {
		if err := r.insertModule(ctx, q, y.ID, i, &y.Modules[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *CourseRepository) UpdateYear(ctx context.Context, id string, update entity.YearUpdate) error {
	if update.IsEmpty() {
		return r.mustExist(ctx, r.db, tableYears, id, entity.ErrYearNotFound)
	}
	b := r.builder().Update(tableYears)
	if update.Label != nil {
		b.Set("label", *update.Label)
	}
	if update.YearNumber != nil {
		b.Set("year_number", *update.YearNumber)
	}
	if update.Weight != nil {
		b.Set("weight", *update.Weight)
	}
	setNullable(b, "target_grade", update.TargetGrade)

	query, args := b.Where(sql.EQ("id", id)).Query()
	return r.execOne(ctx, r.db, "update year", entity.ErrYearNotFound, query, args)
}

func (r *CourseRepository) DeleteYear(ctx context.Context, id string) error {
	query, args := r.builder().Delete(tableYears).Where(sql.EQ("id", id)).Query()
	return r.execOne(ctx, r.db, "delete year", entity.ErrYearNotFound, query, args)
}

func (r *CourseRepository) AddModule(ctx context.Context, yearID string, module *entity.Module) (*entity.Module, error) {
	created := module.Clone()
	created.Assessments = nil
	err := r.withTx(ctx, func(tx *stdsql.Tx) error {
		if err := r.mustExist(ctx, tx, tableYears, yearID, entity.ErrYearNotFound); err != nil {
			return err
		}
		pos, err := r.nextPosition(ctx, tx, tableModules, "year_id", yearID)
		if err != nil {
			return err
		}
		return r.insertModule(ctx, tx, yearID, pos, &created)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *CourseRepository) insertModule(ctx context.Context, q querier, yearID string, pos int, m *entity.Module) error {
	m.ID = r.newID()
	query, args := r.builder().
		Insert(tableModules).
		Columns("id", "year_id", "name", "credits", "target_grade", "position").
		Values(m.ID, yearID, m.Name, m.Credits, floatArg(m.TargetGrade), pos).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return storageError("insert module", err)
	}
	for i := range m.Assessments {
		if err := r.insertAssessment(ctx, q, m.ID, i, &m.Assessments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *CourseRepository) UpdateModule(ctx context.Context, id string, update entity.ModuleUpdate) error {
	if update.IsEmpty() {
		return r.mustExist(ctx, r.db, tableModules, id, entity.ErrModuleNotFound)
	}
	b := r.builder().Update(tableModules)
	if update.Name != nil {
		b.Set("name", *update.Name)
	}
	if update.Credits != nil {
		b.Set("credits", *update.Credits)
	}
	setNullable(b, "target_grade", update.TargetGrade)

	query, args := b.Where(sql.EQ("id", id)).Query()
	return r.execOne(ctx, r.db, "update module", entity.ErrModuleNotFound, query, args)
}

func (r *CourseRepository) DeleteModule(ctx context.Context, id string) error {
	query, args := r.builder().Delete(tableModules).Where(sql.EQ("id", id)).Query()
	return r.execOne(ctx, r.db, "delete module", entity.ErrModuleNotFound, query, args)
}

func (r *CourseRepository) AddAssessment(ctx context.Context, moduleID string, assessment *entity.Assessment) (*entity.Assessment, error) {
	created := assessment.Clone()
	err := r.withTx(ctx, func(tx *stdsql.Tx) error {
		if err := r.mustExist(ctx, tx, tableModules, moduleID, entity.ErrModuleNotFound); err != nil {
			return err
		}
		pos, err := r.nextPosition(ctx, tx, tableAssessments, "module_id", moduleID)
		if err != nil {
			return err
		}
		return r.insertAssessment(ctx, tx, moduleID, pos, &created)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *CourseRepository) insertAssessment(ctx context.Context, q querier, moduleID string, pos int, a *entity.Assessment) error {
	a.ID = r.newID()
	query, args := r.builder().
		Insert(tableAssessments).
		Columns("id", "module_id", "name", "weight", "grade", "completed", "position").
		Values(a.ID, moduleID, a.Name, a.Weight, floatArg(a.Grade), a.Completed, pos).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return storageError("insert assessment", err)
	}
	return nil
}

func (r *CourseRepository) UpdateAssessment(ctx context.Context, id string, update entity.AssessmentUpdate) error {
	if update.IsEmpty() {
		return r.mustExist(ctx, r.db, tableAssessments, id, entity.ErrAssessmentNotFound)
	}
	b := r.builder().Update(tableAssessments)
	if update.Name != nil {
		b.Set("name", *update.Name)
	}
	if update.Weight != nil {
		b.Set("weight", *update.Weight)
	}
	setNullable(b, "grade", update.Grade)
	if update.Completed != nil {
		b.Set("completed", *update.Completed)
	}

	query, args := b.Where(sql.EQ("id", id)).Query()
	return r.execOne(ctx, r.db, "update assessment", entity.ErrAssessmentNotFound, query, args)
}

func (r *CourseRepository) DeleteAssessment(ctx context.Context, id string) error {
	query, args := r.builder().Delete(tableAssessments).Where(sql.EQ("id", id)).Query()
	return r.execOne(ctx, r.db, "delete assessment", entity.ErrAssessmentNotFound, query, args)
}

func (r *CourseRepository) withTx(ctx context.Context, fn func(tx *stdsql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin tx", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit tx", err)
	}
	return nil
}

// execOne runs a statement that must touch exactly one row.
func (r *CourseRepository) execOne(ctx context.Context, q querier, op string, notFound error, query string, args []any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return storageError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageError(op, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (r *CourseRepository) mustExist(ctx context.Context, q querier, table, id string, notFound error) error {
	query, args := r.builder().
		Select("id").
		From(sql.Table(table)).
		Where(sql.EQ("id", id)).
		Query()
	var found string
	err := q.QueryRowContext(ctx, query, args...).Scan(&found)
	if errors.Is(err, stdsql.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return storageError("lookup "+table, err)
	}
	return nil
}

// nextPosition returns the slot after the last sibling under parentID.
func (r *CourseRepository) nextPosition(ctx context.Context, q querier, table, parentColumn, parentID string) (int, error) {
	query, args := r.builder().
		Select(sql.Max("position")).
		From(sql.Table(table)).
		Where(sql.EQ(parentColumn, parentID)).
		Query()
	var last stdsql.NullInt64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&last); err != nil {
		return 0, storageError("next position", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return int(last.Int64) + 1, nil
}

func setNullable(b *sql.UpdateBuilder, column string, v entity.Nullable[float64]) {
	if !v.Set {
		return
	}
	if v.Value == nil {
		b.SetNull(column)
		return
	}
	b.Set(column, *v.Value)
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v stdsql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func toAny(ids []string) []any {
	return lo.Map(ids, func(id string, _ int) any { return id })
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// storageError marks a driver failure as transient. Cancellation passes through.
func storageError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, entity.Transient(err))
}
