package migrate

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// CoursesColumns holds the columns for the "courses" table.
	CoursesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Unique: true, Size: 128},
		{Name: "institution", Type: field.TypeString, Size: 255},
		{Name: "title", Type: field.TypeString, Size: 255},
		{Name: "target_grade", Type: field.TypeFloat64, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// CoursesTable holds the schema information for the "courses" table.
	CoursesTable = &schema.Table{
		Name:       "courses",
		Columns:    CoursesColumns,
		PrimaryKey: []*schema.Column{CoursesColumns[0]},
	}
	// AcademicYearsColumns holds the columns for the "academic_years" table.
	AcademicYearsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "label", Type: field.TypeString, Size: 255},
		{Name: "year_number", Type: field.TypeInt},
		{Name: "weight", Type: field.TypeFloat64},
		{Name: "target_grade", Type: field.TypeFloat64, Nullable: true},
		{Name: "position", Type: field.TypeInt, Default: 0},
		{Name: "course_id", Type: field.TypeString, Size: 36},
	}
	// AcademicYearsTable holds the schema information for the "academic_years" table.
	AcademicYearsTable = &schema.Table{
		Name:       "academic_years",
		Columns:    AcademicYearsColumns,
		PrimaryKey: []*schema.Column{AcademicYearsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "academic_years_courses_years",
				Columns:    []*schema.Column{AcademicYearsColumns[6]},
				RefColumns: []*schema.Column{CoursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "academicyear_course_id_year_number",
				Unique:  false,
				Columns: []*schema.Column{AcademicYearsColumns[6], AcademicYearsColumns[2]},
			},
		},
	}
	// ModulesColumns holds the columns for the "modules" table.
	ModulesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "credits", Type: field.TypeInt},
		{Name: "target_grade", Type: field.TypeFloat64, Nullable: true},
		{Name: "position", Type: field.TypeInt, Default: 0},
		{Name: "year_id", Type: field.TypeString, Size: 36},
	}
	// ModulesTable holds the schema information for the "modules" table.
	ModulesTable = &schema.Table{
		Name:       "modules",
		Columns:    ModulesColumns,
		PrimaryKey: []*schema.Column{ModulesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "modules_academic_years_modules",
				Columns:    []*schema.Column{ModulesColumns[5]},
				RefColumns: []*schema.Column{AcademicYearsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "module_year_id_position",
				Unique:  false,
				Columns: []*schema.Column{ModulesColumns[5], ModulesColumns[4]},
			},
		},
	}
	// AssessmentsColumns holds the columns for the "assessments" table.
	AssessmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "weight", Type: field.TypeFloat64},
		{Name: "grade", Type: field.TypeFloat64, Nullable: true},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "position", Type: field.TypeInt, Default: 0},
		{Name: "module_id", Type: field.TypeString, Size: 36},
	}
	// AssessmentsTable holds the schema information for the "assessments" table.
	AssessmentsTable = &schema.Table{
		Name:       "assessments",
		Columns:    AssessmentsColumns,
		PrimaryKey: []*schema.Column{AssessmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "assessments_modules_assessments",
				Columns:    []*schema.Column{AssessmentsColumns[6]},
				RefColumns: []*schema.Column{ModulesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "assessment_module_id_position",
				Unique:  false,
				Columns: []*schema.Column{AssessmentsColumns[6], AssessmentsColumns[5]},
			},
		},
	}
	// KvEntriesColumns holds the columns for the "kv_entries" table.
	KvEntriesColumns = []*schema.Column{
		{Name: "key", Type: field.TypeString, Size: 255},
		{Name: "value", Type: field.TypeBytes},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// KvEntriesTable holds the schema information for the "kv_entries" table.
	KvEntriesTable = &schema.Table{
		Name:       "kv_entries",
		Columns:    KvEntriesColumns,
		PrimaryKey: []*schema.Column{KvEntriesColumns[0]},
	}
	// CourseTables are the relational course store.
	CourseTables = []*schema.Table{
		CoursesTable,
		AcademicYearsTable,
		ModulesTable,
		AssessmentsTable,
	}
	// Tables holds all the tables in the schema.
	Tables = append(append([]*schema.Table{}, CourseTables...), KvEntriesTable)
)

func init() {
	AcademicYearsTable.ForeignKeys[0].RefTable = CoursesTable
	ModulesTable.ForeignKeys[0].RefTable = AcademicYearsTable
	AssessmentsTable.ForeignKeys[0].RefTable = ModulesTable
}

// Create runs the schema migration for the given tables, defaulting to all of them.
func Create(ctx context.Context, db *sql.DB, dialect string, tables ...*schema.Table) error {
	if len(tables) == 0 {
		tables = Tables
	}
	m, err := schema.NewMigrate(entsql.OpenDB(dialect, db), schema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
