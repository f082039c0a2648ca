package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONOmitsPassword(t *testing.T) {
	u := &User{ID: 1, Username: "alice", Email: "alice@x.com", Password: "$2a$10$hash", UserType: UserTypePatient}

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.NotContains(t, out, "password")
	assert.NotContains(t, string(b), "$2a$10$hash")
	assert.Equal(t, "alice", out["username"])

	detail := PostDetail{Post: PostView{ForumPost: &ForumPost{ID: 1}, Author: u}}
	b, err = json.Marshal(detail)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
}

func TestRegisterRequestNewUser(t *testing.T) {
	req := RegisterRequest{Username: "bob", Email: "bob@x.com", Password: "secret1", FullName: "Bob"}
	u := req.NewUser("hashed")
	assert.Equal(t, UserTypePatient, u.UserType)
	assert.True(t, u.IsVerified)
	assert.Equal(t, "hashed", u.Password)

	req.UserType = UserTypeProfessional
	u = req.NewUser("hashed")
	assert.False(t, u.IsVerified)
	assert.True(t, u.IsProfessional())
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05"`), &d))
	assert.Equal(t, "2024-03-05", d.String())

	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05T10:30:00Z"`), &d))
	assert.Equal(t, "2024-03-05", d.String())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-03-05"`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`"05/03/2024"`), &d))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2023-12-31", d.String())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", v)
}

func TestSecondOpinionSources(t *testing.T) {
	assert.ElementsMatch(t, []string{"accepted", "pending"}, SecondOpinionSources(SecondOpinionAccepted))
	assert.ElementsMatch(t, []string{"completed", "accepted"}, SecondOpinionSources(SecondOpinionCompleted))
	assert.ElementsMatch(t, []string{"cancelled", "pending", "accepted"}, SecondOpinionSources(SecondOpinionCancelled))
	assert.ElementsMatch(t, []string{"pending"}, SecondOpinionSources(SecondOpinionPending))
}

func TestUserUpdateChanges(t *testing.T) {
	name := "Alice B."
	avail := true
	u := UserUpdate{FullName: &name, AvailableForSecondOpinion: &avail}

	changes := u.Changes()
	require.Len(t, changes, 2)
	assert.Equal(t, "full_name", changes[0].Column)
	assert.Equal(t, "available_for_second_opinion", changes[1].Column)

	user := &User{FullName: "Alice", Username: "alice"}
	u.Apply(user)
	assert.Equal(t, "Alice B.", user.FullName)
	assert.True(t, user.AvailableForSecondOpinion)
	assert.Equal(t, "alice", user.Username)
}

func TestSosContract(t *testing.T) {
	now := time.Now()
	req := CreateSosContractRequest{DoctorID: 2, SharedRecordIDs: []int64{5, 7}, ConsentGiven: true}
	c := req.NewContract(1, now)

	assert.Equal(t, ContractTypeSOS, c.ContractType)
	assert.Equal(t, AccessLevelFull, c.AccessLevel)
	assert.False(t, c.IsActive)
	require.NotNil(t, c.ConsentDate)
	assert.True(t, c.Shares(7))
	assert.False(t, c.Shares(6))

	assert.False(t, c.Expired(now))
	past := now.Add(-time.Hour)
	c.ExpiresAt = &past
	assert.True(t, c.Expired(now))
}

func TestSosContractUpdateClearExpiry(t *testing.T) {
	expiry := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &SosContract{ExpiresAt: &expiry}

	u := SosContractUpdate{ClearExpiry: true}
	changes := u.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, "expires_at", changes[0].Column)
	assert.Nil(t, changes[0].Value)

	u.Apply(c)
	assert.Nil(t, c.ExpiresAt)

	moved := expiry.Add(time.Hour)
	u = SosContractUpdate{ExpiresAt: &moved}
	u.Apply(c)
	require.NotNil(t, c.ExpiresAt)
	assert.Equal(t, moved, *c.ExpiresAt)
}
