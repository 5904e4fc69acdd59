package repository

// Repositories はサービス層に渡すリポジトリ一式
type Repositories struct {
	Student    StudentRepository
	Teacher    TeacherRepository
	Curriculum CurriculumRepository
	Enrollment EnrollmentRepository
	Progress   ProgressRepository
	Recitation RecitationRepository
}

func NewGormRepositories() *Repositories {
	return &Repositories{
		Student:    NewGormStudentRepository(),
		Teacher:    NewGormTeacherRepository(),
		Curriculum: NewGormCurriculumRepository(),
		Enrollment: NewGormEnrollmentRepository(),
		Progress:   NewGormProgressRepository(),
		Recitation: NewGormRecitationRepository(),
	}
}
