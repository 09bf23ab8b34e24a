package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/openlearn/auth-service/internal/model"
)

var ErrNotFound = errors.New("principal not found")

type Store struct {
	admins *mongo.Collection
	users  *mongo.Collection
}

func NewStore(database *mongo.Database) *Store {
	return &Store{
		admins: database.Collection("admins"),
		users:  database.Collection("users"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.admins.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return fmt.Errorf("admins email index: %w", err)
	}
	if _, err := s.users.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	return nil
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.admins.FindOne(ctx, bson.M{"email": model.NormalizeEmail(email)}).Decode(&admin); err != nil {
		return nil, mapErr(err)
	}
	return &admin, nil
}

func (s *Store) GetAdminByID(ctx context.Context, id string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.admins.FindOne(ctx, bson.M{"_id": id}).Decode(&admin); err != nil {
		return nil, mapErr(err)
	}
	return &admin, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.users.FindOne(ctx, bson.M{"email": model.NormalizeEmail(email)}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mapErr(err)
	}
	return &user, nil
}

func (s *Store) GetPrincipal(ctx context.Context, kind model.Kind, id string) (model.Principal, error) {
	switch kind {
	case model.KindAdmin:
		return s.GetAdminByID(ctx, id)
	case model.KindUser:
		return s.GetUserByID(ctx, id)
	default:
		return nil, fmt.Errorf("unknown principal kind %q", kind)
	}
}

func (s *Store) UpdateLastLogin(ctx context.Context, kind model.Kind, id string, at time.Time) error {
	update := bson.M{"$set": bson.M{"lastLogin": at, "updatedAt": at}}
	_, err := s.collection(kind).UpdateByID(ctx, id, update)
	return err
}

func (s *Store) SetActive(ctx context.Context, kind model.Kind, id string, active bool) error {
	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}}
	result, err := s.collection(kind).UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Principals are created out-of-band; there is no registration endpoint.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	now := time.Now().UTC()
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	admin.Email = model.NormalizeEmail(admin.Email)
	admin.Role = model.RoleAdmin
	admin.IsActive = true
	admin.CreatedAt = now
	admin.UpdatedAt = now
	_, err := s.admins.InsertOne(ctx, admin)
	return err
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = model.NormalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = model.RoleStudent
	}
	if !model.ValidUserRole(user.Role) {
		return fmt.Errorf("invalid user role %q", user.Role)
	}
	if user.LearningPreferences == (model.LearningPreferences{}) {
		user.LearningPreferences = model.DefaultLearningPreferences()
	}
	if user.EnrolledCourses == nil {
		user.EnrolledCourses = []string{}
	}
	if user.CompletedCourses == nil {
		user.CompletedCourses = []string{}
	}
	if user.Progress.CompletedLessons == nil {
		user.Progress.CompletedLessons = []string{}
	}
	if user.Progress.QuizScores == nil {
		user.Progress.QuizScores = []model.QuizScore{}
	}
	user.IsActive = true
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := s.users.InsertOne(ctx, user)
	return err
}

func (s *Store) collection(kind model.Kind) *mongo.Collection {
	if kind == model.KindAdmin {
		return s.admins
	}
	return s.users
}

func mapErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
