// Package storetest is a behavioural test suite every repository.Store
// implementation must pass. The memory store runs it in unit tests and the
// postgres store runs it against a real database in integration tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freee021022/onconet/internal/authz"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/repository"
)

// Factory returns an empty store for one test.
type Factory func(t *testing.T) repository.Store

// Run executes the whole suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Forum", func(t *testing.T) { testForum(t, newStore(t)) })
	t.Run("ViewCountConcurrency", func(t *testing.T) { testViewCountConcurrency(t, newStore(t)) })
	t.Run("SecondOpinion", func(t *testing.T) { testSecondOpinion(t, newStore(t)) })
	t.Run("Messages", func(t *testing.T) { testMessages(t, newStore(t)) })
	t.Run("Pharmacies", func(t *testing.T) { testPharmacies(t, newStore(t)) })
	t.Run("MedicalRecords", func(t *testing.T) { testMedicalRecords(t, newStore(t)) })
	t.Run("SosContracts", func(t *testing.T) { testSosContracts(t, newStore(t)) })
	t.Run("Audit", func(t *testing.T) { testAudit(t, newStore(t)) })
}

func ptr[T any](v T) *T { return &v }

// CreateUser inserts a user with derived unique fields.
func CreateUser(t *testing.T, s repository.Store, username, userType string) *model.User {
	t.Helper()
	u := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		FullName: username,
		UserType: userType,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func testUsers(t *testing.T, s repository.Store) {
	ctx := context.Background()

	alice := CreateUser(t, s, "alice", model.UserTypePatient)
	doc := CreateUser(t, s, "drwho", model.UserTypeProfessional)

	got, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash", got.Password)
	assert.False(t, got.CreatedAt.IsZero())

	got, err = s.GetUserByUsername(ctx, "drwho")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	got, err = s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.GetUser(ctx, 99999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	dupName := &model.User{Username: "alice", Email: "other@example.com", Password: "x", FullName: "x", UserType: model.UserTypePatient}
	assert.ErrorIs(t, s.CreateUser(ctx, dupName), repository.ErrDuplicateUsername)

	dupEmail := &model.User{Username: "alice2", Email: "ALICE@example.com", Password: "x", FullName: "x", UserType: model.UserTypePatient}
	assert.ErrorIs(t, s.CreateUser(ctx, dupEmail), repository.ErrDuplicateEmail)

	updated, err := s.UpdateUser(ctx, doc.ID, &model.UserUpdate{
		Specialization:            ptr("oncology"),
		AvailableForSecondOpinion: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "oncology", *updated.Specialization)
	assert.True(t, updated.AvailableForSecondOpinion)
	assert.Equal(t, "drwho", updated.Username)

	_, err = s.UpdateUser(ctx, 99999, &model.UserUpdate{FullName: ptr("ghost")})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	CreateUser(t, s, "drno", model.UserTypeProfessional)

	pros, err := s.ListUsers(ctx, model.UserFilter{UserType: model.UserTypeProfessional})
	require.NoError(t, err)
	require.Len(t, pros, 2)
	assert.Equal(t, "drwho", pros[0].Username)
	assert.Equal(t, "drno", pros[1].Username)

	available, err := s.ListUsers(ctx, model.UserFilter{UserType: model.UserTypeProfessional, AvailableForSecondOpinion: ptr(true)})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, doc.ID, available[0].ID)

	none, err := s.ListUsers(ctx, model.UserFilter{UserType: model.UserTypePharmacy})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testForum(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := CreateUser(t, s, "writer", model.UserTypePatient)

	cat := &model.ForumCategory{Name: "Supporto emotivo", Slug: "emotional-support", Description: ptr("Talk")}
	require.NoError(t, s.CreateForumCategory(ctx, cat))
	assert.NotZero(t, cat.ID)

	other := &model.ForumCategory{Name: "Terapie", Slug: "treatments"}
	require.NoError(t, s.CreateForumCategory(ctx, other))

	assert.ErrorIs(t, s.CreateForumCategory(ctx, &model.ForumCategory{Name: "x", Slug: "emotional-support"}), repository.ErrDuplicateSlug)

	bySlug, err := s.GetForumCategoryBySlug(ctx, "emotional-support")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, bySlug.ID)
	_, err = s.GetForumCategoryBySlug(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	post := &model.ForumPost{Title: "Hello", Content: "First post", UserID: author.ID, CategoryID: cat.ID}
	require.NoError(t, s.CreateForumPost(ctx, post))

	got, err := s.GetForumPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "First post", got.Content)
	assert.Equal(t, author.ID, got.UserID)
	assert.Equal(t, cat.ID, got.CategoryID)
	assert.Equal(t, 0, got.ViewCount)
	assert.Equal(t, 0, got.CommentCount)

	second := &model.ForumPost{Title: "Other", Content: "x", UserID: author.ID, CategoryID: other.ID}
	require.NoError(t, s.CreateForumPost(ctx, second))

	inCat, err := s.ListForumPosts(ctx, model.ForumPostFilter{CategoryID: cat.ID})
	require.NoError(t, err)
	require.Len(t, inCat, 1)
	assert.Equal(t, post.ID, inCat[0].ID)

	allPosts, err := s.ListForumPosts(ctx, model.ForumPostFilter{})
	require.NoError(t, err)
	require.Len(t, allPosts, 2)
	assert.Equal(t, post.ID, allPosts[0].ID)

	viewed, err := s.IncrementPostViewCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, viewed.ViewCount)
	_, err = s.IncrementPostViewCount(ctx, 99999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.IncrementCategoryPostCount(ctx, cat.ID))
	assert.ErrorIs(t, s.IncrementCategoryPostCount(ctx, 99999), repository.ErrNotFound)
	bySlug, err = s.GetForumCategory(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bySlug.PostCount)

	for i := 0; i < 2; i++ {
		c := &model.ForumComment{Content: fmt.Sprintf("comment %d", i), UserID: author.ID, PostID: post.ID}
		require.NoError(t, s.CreateForumComment(ctx, c))
		require.NoError(t, s.IncrementPostCommentCount(ctx, post.ID))
	}
	assert.ErrorIs(t, s.IncrementPostCommentCount(ctx, 99999), repository.ErrNotFound)

	comments, err := s.ListForumComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "comment 0", comments[0].Content)
	assert.Equal(t, "comment 1", comments[1].Content)

	got, err = s.GetForumPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)

	empty, err := s.ListForumComments(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	cats, err := s.ListForumCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "emotional-support", cats[0].Slug)
}

func testViewCountConcurrency(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := CreateUser(t, s, "reader", model.UserTypePatient)
	cat := &model.ForumCategory{Name: "General", Slug: "general"}
	require.NoError(t, s.CreateForumCategory(ctx, cat))
	post := &model.ForumPost{Title: "Busy", Content: "x", UserID: author.ID, CategoryID: cat.ID}
	require.NoError(t, s.CreateForumPost(ctx, post))

	const readers = 50
	var wg sync.WaitGroup
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.IncrementPostViewCount(ctx, post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetForumPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, readers, got.ViewCount)
}

func testSecondOpinion(t *testing.T, s repository.Store) {
	ctx := context.Background()
	patient := CreateUser(t, s, "sopatient", model.UserTypePatient)
	doctor := CreateUser(t, s, "sodoctor", model.UserTypeProfessional)

	req := &model.SecondOpinionRequest{
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		Diagnosis:     "Stage II",
		Description:   "Please review",
		DocumentLinks: []string{"https://docs.example.com/a.pdf"},
		Status:        "accepted",
	}
	require.NoError(t, s.CreateSecondOpinionRequest(ctx, req))
	assert.Equal(t, model.SecondOpinionPending, req.Status)

	got, err := s.GetSecondOpinionRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SecondOpinionPending, got.Status)
	assert.Equal(t, []string{"https://docs.example.com/a.pdf"}, []string(got.DocumentLinks))

	byDoctor, err := s.ListSecondOpinionRequests(ctx, model.SecondOpinionFilter{DoctorID: doctor.ID})
	require.NoError(t, err)
	assert.Len(t, byDoctor, 1)
	byOther, err := s.ListSecondOpinionRequests(ctx, model.SecondOpinionFilter{PatientID: doctor.ID})
	require.NoError(t, err)
	assert.Empty(t, byOther)

	updated, err := s.UpdateSecondOpinionRequestStatus(ctx, req.ID, model.SecondOpinionAccepted, model.SecondOpinionSources(model.SecondOpinionAccepted)...)
	require.NoError(t, err)
	assert.Equal(t, model.SecondOpinionAccepted, updated.Status)

	_, err = s.UpdateSecondOpinionRequestStatus(ctx, req.ID, model.SecondOpinionRejected, model.SecondOpinionSources(model.SecondOpinionRejected)...)
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	got, err = s.GetSecondOpinionRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SecondOpinionAccepted, got.Status)

	// Without source statuses the write is unconditional.
	updated, err = s.UpdateSecondOpinionRequestStatus(ctx, req.ID, model.SecondOpinionPending)
	require.NoError(t, err)
	assert.Equal(t, model.SecondOpinionPending, updated.Status)

	_, err = s.UpdateSecondOpinionRequestStatus(ctx, 99999, model.SecondOpinionAccepted)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.UpdateSecondOpinionRequestStatus(ctx, 99999, model.SecondOpinionAccepted, model.SecondOpinionPending)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testMessages(t *testing.T, s repository.Store) {
	ctx := context.Background()
	a := CreateUser(t, s, "msga", model.UserTypePatient)
	b := CreateUser(t, s, "msgb", model.UserTypeProfessional)
	c := CreateUser(t, s, "msgc", model.UserTypePatient)

	send := func(from, to int64, content string) *model.Message {
		m := &model.Message{SenderID: from, ReceiverID: to, Content: content, IsRead: true}
		require.NoError(t, s.CreateMessage(ctx, m))
		assert.False(t, m.IsRead)
		return m
	}
	m1 := send(a.ID, b.ID, "hi doctor")
	send(b.ID, a.ID, "hello")
	send(c.ID, b.ID, "unrelated")

	inbox, err := s.ListMessages(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, "hi doctor", inbox[0].Content)

	conv, err := s.ListConversation(ctx, b.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "hi doctor", conv[0].Content)
	assert.Equal(t, "hello", conv[1].Content)

	read, err := s.MarkMessageAsRead(ctx, m1.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	read, err = s.MarkMessageAsRead(ctx, m1.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	_, err = s.MarkMessageAsRead(ctx, 99999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetMessage(ctx, 99999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testPharmacies(t *testing.T, s repository.Store) {
	ctx := context.Background()

	p1 := &model.Pharmacy{Name: "Farmacia Centrale", Address: "Via Roma 1", City: "Milano", Region: "Lombardia", Specializations: []string{"oncology", "galenic"}}
	p2 := &model.Pharmacy{Name: "Farmacia Nord", Address: "Via Po 2", City: "Torino", Region: "Piemonte", Specializations: []string{"galenic"}}
	require.NoError(t, s.CreatePharmacy(ctx, p1))
	require.NoError(t, s.CreatePharmacy(ctx, p2))

	all, err := s.ListPharmacies(ctx, model.PharmacyFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onco, err := s.ListPharmacies(ctx, model.PharmacyFilter{Specialization: "oncology"})
	require.NoError(t, err)
	require.Len(t, onco, 1)
	assert.Equal(t, p1.ID, onco[0].ID)

	milano, err := s.ListPharmacies(ctx, model.PharmacyFilter{City: "milano"})
	require.NoError(t, err)
	require.Len(t, milano, 1)

	piemonte, err := s.ListPharmacies(ctx, model.PharmacyFilter{Region: "Piemonte"})
	require.NoError(t, err)
	require.Len(t, piemonte, 1)
	assert.Equal(t, p2.ID, piemonte[0].ID)

	updated, err := s.UpdatePharmacy(ctx, p2.ID, &model.PharmacyUpdate{Latitude: ptr(45.07), Longitude: ptr(7.68), Rating: ptr(4)})
	require.NoError(t, err)
	assert.InDelta(t, 45.07, *updated.Latitude, 0.0001)
	assert.Equal(t, 4, *updated.Rating)
	assert.Equal(t, "Farmacia Nord", updated.Name)

	_, err = s.UpdatePharmacy(ctx, 99999, &model.PharmacyUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetPharmacy(ctx, 99999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.CreateTestimonial(ctx, &model.Testimonial{Name: "Maria", Role: "Paziente", Location: "Roma", Content: "Grazie", Rating: 5}))
	ts, err := s.ListTestimonials(ctx)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "Maria", ts[0].Name)
}

func testMedicalRecords(t *testing.T, s repository.Store) {
	ctx := context.Background()
	owner := CreateUser(t, s, "mrowner", model.UserTypePatient)
	other := CreateUser(t, s, "mrother", model.UserTypePatient)

	date, err := model.ParseDate("2024-02-10")
	require.NoError(t, err)
	rec := &model.MedicalRecord{
		PatientID:   owner.ID,
		RecordType:  model.RecordTypeDiagnosis,
		Title:       "Biopsy",
		Description: "Result",
		Date:        date,
		Medications: []byte(`[]`),
		Documents:   []string{},
		IsPrivate:   true,
	}
	require.NoError(t, s.CreateMedicalRecord(ctx, rec))

	got, err := s.GetMedicalRecord(ctx, rec.ID, authz.Owner(owner.ID))
	require.NoError(t, err)
	assert.Equal(t, "Biopsy", got.Title)
	assert.Equal(t, "2024-02-10", got.Date.String())

	_, err = s.GetMedicalRecord(ctx, rec.ID, authz.Owner(other.ID))
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetMedicalRecord(ctx, rec.ID, authz.Scope{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err := s.ListMedicalRecords(ctx, authz.Owner(other.ID))
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = s.ListMedicalRecords(ctx, authz.Owner(owner.ID))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.UpdateMedicalRecord(ctx, rec.ID, authz.Owner(other.ID), &model.MedicalRecordUpdate{Title: ptr("hijack")})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	updated, err := s.UpdateMedicalRecord(ctx, rec.ID, authz.Owner(owner.ID), &model.MedicalRecordUpdate{Title: ptr("Biopsy v2"), IsPrivate: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Biopsy v2", updated.Title)
	assert.False(t, updated.IsPrivate)
	assert.Equal(t, owner.ID, updated.PatientID)

	assert.ErrorIs(t, s.DeleteMedicalRecord(ctx, rec.ID, authz.Owner(other.ID)), repository.ErrNotFound)
	require.NoError(t, s.DeleteMedicalRecord(ctx, rec.ID, authz.Owner(owner.ID)))
	assert.ErrorIs(t, s.DeleteMedicalRecord(ctx, rec.ID, authz.Owner(owner.ID)), repository.ErrNotFound)
}

func testSosContracts(t *testing.T, s repository.Store) {
	ctx := context.Background()
	patient := CreateUser(t, s, "sospatient", model.UserTypePatient)
	doctor := CreateUser(t, s, "sosdoctor", model.UserTypeProfessional)
	stranger := CreateUser(t, s, "sosstranger", model.UserTypePatient)

	c := &model.SosContract{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		ContractType:    model.ContractTypeSOS,
		AccessLevel:     model.AccessLevelFull,
		SharedRecordIDs: []int64{1, 2},
		IsActive:        true,
	}
	require.NoError(t, s.CreateSosContract(ctx, c))
	assert.False(t, c.IsActive)

	for _, id := range []int64{patient.ID, doctor.ID} {
		got, err := s.GetSosContract(ctx, c.ID, authz.Owner(id))
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, []int64(got.SharedRecordIDs))
	}
	_, err := s.GetSosContract(ctx, c.ID, authz.Owner(stranger.ID))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	scope := authz.Owner(patient.ID)
	got, err := s.SetSosContractActive(ctx, c.ID, scope, true)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	got, err = s.SetSosContractActive(ctx, c.ID, scope, true)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	got, err = s.SetSosContractActive(ctx, c.ID, authz.Owner(doctor.ID), false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = s.SetSosContractActive(ctx, c.ID, authz.Owner(stranger.ID), true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.SetSosContractActive(ctx, 99999, scope, true)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	got, err = s.UpdateSosContract(ctx, c.ID, scope, &model.SosContractUpdate{
		ConsentGiven:    ptr(true),
		ConsentDate:     &now,
		SharedRecordIDs: &[]int64{3},
	})
	require.NoError(t, err)
	assert.True(t, got.ConsentGiven)
	require.NotNil(t, got.ConsentDate)
	assert.Equal(t, []int64{3}, []int64(got.SharedRecordIDs))

	byPatient, err := s.ListSosContracts(ctx, model.SosContractFilter{PatientID: patient.ID})
	require.NoError(t, err)
	assert.Len(t, byPatient, 1)
	byDoctor, err := s.ListSosContracts(ctx, model.SosContractFilter{DoctorID: doctor.ID})
	require.NoError(t, err)
	assert.Len(t, byDoctor, 1)
	byStranger, err := s.ListSosContracts(ctx, model.SosContractFilter{DoctorID: stranger.ID})
	require.NoError(t, err)
	assert.Empty(t, byStranger)
}

func testAudit(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := CreateUser(t, s, "audited", model.UserTypePatient)

	old := &model.AuditEvent{UserID: u.ID, Action: model.AuditActionLogin, Resource: model.AuditResourceSession, Status: model.AuditStatusSuccess, CreatedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, s.CreateAuditEvent(ctx, old))
	for _, action := range []string{model.AuditActionRead, model.AuditActionUpdate} {
		e := &model.AuditEvent{UserID: u.ID, Action: action, Resource: model.AuditResourceMedicalRecord, ResourceID: ptr(int64(1)), Status: model.AuditStatusSuccess}
		require.NoError(t, s.CreateAuditEvent(ctx, e))
	}

	events, err := s.ListAuditEvents(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.AuditActionUpdate, events[0].Action)

	removed, err := s.DeleteAuditEventsBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	events, err = s.ListAuditEvents(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
