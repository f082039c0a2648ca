package repository

import (
	"context"
	"errors"
	"time"

	"github.com/freee021022/onconet/internal/authz"
	"github.com/freee021022/onconet/internal/model"
)

var (
	// ErrNotFound is returned when an id, or an id inside a scope, does not
	// resolve. Stores never create rows in response to an update of an
	// absent id.
	ErrNotFound = errors.New("not found")

	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateSlug     = errors.New("slug already in use")

	// ErrInvalidTransition is returned by conditional status updates when
	// the current status is not one of the allowed sources.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		GetUser(ctx context.Context, id int64) (*model.User, error)
		GetUserByUsername(ctx context.Context, username string) (*model.User, error)
		GetUserByEmail(ctx context.Context, email string) (*model.User, error)
		// CreateUser enforces username and email uniqueness atomically.
		CreateUser(ctx context.Context, user *model.User) error
		UpdateUser(ctx context.Context, id int64, update *model.UserUpdate) (*model.User, error)
		ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
	}

	ForumRepository interface {
		ListForumCategories(ctx context.Context) ([]*model.ForumCategory, error)
		GetForumCategory(ctx context.Context, id int64) (*model.ForumCategory, error)
		GetForumCategoryBySlug(ctx context.Context, slug string) (*model.ForumCategory, error)
		CreateForumCategory(ctx context.Context, category *model.ForumCategory) error
		IncrementCategoryPostCount(ctx context.Context, id int64) error

		ListForumPosts(ctx context.Context, filter model.ForumPostFilter) ([]*model.ForumPost, error)
		GetForumPost(ctx context.Context, id int64) (*model.ForumPost, error)
		CreateForumPost(ctx context.Context, post *model.ForumPost) error
		// IncrementPostViewCount atomically adds one view and returns the
		// post as it is after the increment.
		IncrementPostViewCount(ctx context.Context, id int64) (*model.ForumPost, error)
		IncrementPostCommentCount(ctx context.Context, id int64) error

		ListForumComments(ctx context.Context, postID int64) ([]*model.ForumComment, error)
		CreateForumComment(ctx context.Context, comment *model.ForumComment) error
	}

	SecondOpinionRepository interface {
		ListSecondOpinionRequests(ctx context.Context, filter model.SecondOpinionFilter) ([]*model.SecondOpinionRequest, error)
		GetSecondOpinionRequest(ctx context.Context, id int64) (*model.SecondOpinionRequest, error)
		CreateSecondOpinionRequest(ctx context.Context, req *model.SecondOpinionRequest) error
		// UpdateSecondOpinionRequestStatus writes status. When from is not
		// empty the write only happens if the current status is one of
		// them, otherwise ErrInvalidTransition.
		UpdateSecondOpinionRequestStatus(ctx context.Context, id int64, status string, from ...string) (*model.SecondOpinionRequest, error)
	}

	MessageRepository interface {
		// ListMessages returns the messages received by userID.
		ListMessages(ctx context.Context, userID int64) ([]*model.Message, error)
		// ListConversation returns messages in both directions between two
		// users in insertion order.
		ListConversation(ctx context.Context, user1ID, user2ID int64) ([]*model.Message, error)
		GetMessage(ctx context.Context, id int64) (*model.Message, error)
		CreateMessage(ctx context.Context, msg *model.Message) error
		MarkMessageAsRead(ctx context.Context, id int64) (*model.Message, error)
	}

	PharmacyRepository interface {
		ListPharmacies(ctx context.Context, filter model.PharmacyFilter) ([]*model.Pharmacy, error)
		GetPharmacy(ctx context.Context, id int64) (*model.Pharmacy, error)
		CreatePharmacy(ctx context.Context, pharmacy *model.Pharmacy) error
		UpdatePharmacy(ctx context.Context, id int64, update *model.PharmacyUpdate) (*model.Pharmacy, error)
	}

	TestimonialRepository interface {
		ListTestimonials(ctx context.Context) ([]*model.Testimonial, error)
		CreateTestimonial(ctx context.Context, testimonial *model.Testimonial) error
	}

	// MedicalRecordRepository filters every read and write by the owning
	// patient carried in scope.
	MedicalRecordRepository interface {
		ListMedicalRecords(ctx context.Context, scope authz.Scope) ([]*model.MedicalRecord, error)
		GetMedicalRecord(ctx context.Context, id int64, scope authz.Scope) (*model.MedicalRecord, error)
		CreateMedicalRecord(ctx context.Context, record *model.MedicalRecord) error
		UpdateMedicalRecord(ctx context.Context, id int64, scope authz.Scope, update *model.MedicalRecordUpdate) (*model.MedicalRecord, error)
		DeleteMedicalRecord(ctx context.Context, id int64, scope authz.Scope) error
	}

	// SosContractRepository scopes single-contract operations to a
	// participant: the scope must match the patient or the doctor.
	SosContractRepository interface {
		ListSosContracts(ctx context.Context, filter model.SosContractFilter) ([]*model.SosContract, error)
		GetSosContract(ctx context.Context, id int64, scope authz.Scope) (*model.SosContract, error)
		CreateSosContract(ctx context.Context, contract *model.SosContract) error
		UpdateSosContract(ctx context.Context, id int64, scope authz.Scope, update *model.SosContractUpdate) (*model.SosContract, error)
		SetSosContractActive(ctx context.Context, id int64, scope authz.Scope, active bool) (*model.SosContract, error)
	}

	AuditRepository interface {
		CreateAuditEvent(ctx context.Context, event *model.AuditEvent) error
		ListAuditEvents(ctx context.Context, userID int64, limit int) ([]*model.AuditEvent, error)
		DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	// Store is the full entity store. It is chosen once at startup and
	// injected into the services.
	Store interface {
		UserRepository
		ForumRepository
		SecondOpinionRepository
		MessageRepository
		PharmacyRepository
		TestimonialRepository
		MedicalRecordRepository
		SosContractRepository
		AuditRepository

		Ping(ctx context.Context) error
		Close() error
	}
)
