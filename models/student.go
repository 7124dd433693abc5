package models

// StudentInput is the caller-supplied part of a student record. It is the
// shape accepted on create and update.
type StudentInput struct {
	Name          string `json:"name" db:"name" gorm:"type:text;not null"`
	StudentClass  string `json:"student_class" db:"student_class" gorm:"type:text;not null"`
	Section       string `json:"section" db:"section" gorm:"type:text;not null"`
	Gender        string `json:"gender" db:"gender" gorm:"type:text;not null"`
	Contact       string `json:"contact" db:"contact" gorm:"type:text;not null"`
	AdmissionDate Date   `json:"admission_date" db:"admission_date" gorm:"not null"`
	Status        bool   `json:"status" db:"status" gorm:"not null;default:true"`
}

// Student is a stored record: the input fields plus the identifier the
// store assigned on insert.
type Student struct {
	ID int64 `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	StudentInput
}

func (Student) TableName() string {
	return "students"
}

// CreatedResponse is returned by POST /add-student.
type CreatedResponse struct {
	Message   string `json:"message"`
	StudentID int64  `json:"student_id"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
