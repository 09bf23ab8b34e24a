package model

import (
	"strings"
	"time"
)

type Kind string

const (
	KindAdmin Kind = "admin"
	KindUser  Kind = "user"
)

func (k Kind) Label() string {
	switch k {
	case KindAdmin:
		return "Admin"
	case KindUser:
		return "User"
	default:
		return "Account"
	}
}

// NormalizeEmail is applied on every write and lookup so emails compare
// case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleStudent   Role = "student"
	RoleTeacher   Role = "teacher"
	RoleUserAdmin Role = "admin"
)

func ValidUserRole(role Role) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleUserAdmin:
		return true
	default:
		return false
	}
}

type Principal interface {
	PrincipalID() string
	PrincipalRole() Role
	Active() bool
}

type Admin struct {
	ID           string     `bson:"_id" json:"id"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"passwordHash" json:"-"`
	FirstName    string     `bson:"firstName" json:"firstName"`
	LastName     string     `bson:"lastName" json:"lastName"`
	Role         Role       `bson:"role" json:"role"`
	IsActive     bool       `bson:"isActive" json:"isActive"`
	LastLogin    *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (a *Admin) PrincipalID() string { return a.ID }
func (a *Admin) PrincipalRole() Role { return a.Role }
func (a *Admin) Active() bool        { return a.IsActive }

type User struct {
	ID           string     `bson:"_id" json:"id"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"passwordHash" json:"-"`
	FirstName    string     `bson:"firstName" json:"firstName"`
	LastName     string     `bson:"lastName" json:"lastName"`
	Role         Role       `bson:"role" json:"role"`
	IsActive     bool       `bson:"isActive" json:"isActive"`
	LastLogin    *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`

	LearningPreferences LearningPreferences `bson:"learningPreferences" json:"learningPreferences"`
	EnrolledCourses     []string            `bson:"enrolledCourses" json:"enrolledCourses"`
	CompletedCourses    []string            `bson:"completedCourses" json:"completedCourses"`
	Progress            Progress            `bson:"progress" json:"progress"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) PrincipalID() string { return u.ID }
func (u *User) PrincipalRole() Role { return u.Role }
func (u *User) Active() bool        { return u.IsActive }

func (u *User) FullName() string { return u.FirstName + " " + u.LastName }

func (u *User) EnrolledInCourse(courseID string) bool {
	return containsID(u.EnrolledCourses, courseID)
}

func (u *User) CompletedCourse(courseID string) bool {
	return containsID(u.CompletedCourses, courseID)
}

type LearningPreferences struct {
	PreferredLanguage     string                `bson:"preferredLanguage" json:"preferredLanguage"`
	NotificationSettings  NotificationSettings  `bson:"notificationSettings" json:"notificationSettings"`
	AccessibilitySettings AccessibilitySettings `bson:"accessibilitySettings" json:"accessibilitySettings"`
}

type NotificationSettings struct {
	Email bool `bson:"email" json:"email"`
	Push  bool `bson:"push" json:"push"`
}

type AccessibilitySettings struct {
	FontSize     string `bson:"fontSize" json:"fontSize"`
	HighContrast bool   `bson:"highContrast" json:"highContrast"`
}

type Progress struct {
	CompletedLessons []string    `bson:"completedLessons" json:"completedLessons"`
	QuizScores       []QuizScore `bson:"quizScores" json:"quizScores"`
}

type QuizScore struct {
	Quiz        string    `bson:"quiz" json:"quiz"`
	Score       float64   `bson:"score" json:"score"`
	CompletedAt time.Time `bson:"completedAt" json:"completedAt"`
}

func DefaultLearningPreferences() LearningPreferences {
	return LearningPreferences{
		PreferredLanguage: "en",
		NotificationSettings: NotificationSettings{
			Email: true,
			Push:  true,
		},
		AccessibilitySettings: AccessibilitySettings{
			FontSize:     "medium",
			HighContrast: false,
		},
	}
}

func containsID(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
