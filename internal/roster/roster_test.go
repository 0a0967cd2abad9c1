package roster_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdg-garage/shift-booking-bot/internal/database"
	"github.com/gdg-garage/shift-booking-bot/internal/roster"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
	"github.com/gdg-garage/shift-booking-bot/internal/store"
)

const sampleRoster = `StudentID,Name,Faculty,Night,Admin,Special
0123456,Alice,ENG,1,0,0
7654321,Bob
1111111,Carol,,0,1
2222222,Dave,SCI,,,1
`

func TestParse_OptionalColumns(t *testing.T) {
	recs, err := roster.Parse(strings.NewReader(sampleRoster))
	require.NoError(t, err)
	require.Len(t, recs, 4)

	assert.Equal(t, roster.Record{StudentID: "0123456", Name: "Alice", NightEligible: true}, recs[0])
	assert.Equal(t, roster.Record{StudentID: "7654321", Name: "Bob"}, recs[1])
	assert.Equal(t, roster.Record{StudentID: "1111111", Name: "Carol", IsAdmin: true}, recs[2])
	assert.Equal(t, roster.Record{StudentID: "2222222", Name: "Dave", ReducedQuota: true}, recs[3])
}

func TestParse_RejectsBadRows(t *testing.T) {
	tests := map[string]string{
		"ShortID":   "id,name\n12345,Alice\n",
		"EmptyName": "id,name\n1234567, \n",
		"BadFlag":   "id,name,x,night\n1234567,Alice,,maybe\n",
		"Duplicate": "id,name\n1234567,Alice\n1234567,Alicia\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := roster.Parse(strings.NewReader(input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line")
		})
	}
}

func newResolver(t *testing.T) *roster.Resolver {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	st := store.New(db)

	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleRoster), 0o600))
	n, err := roster.ImportFile(context.Background(), st, path)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	return roster.NewResolver(st)
}

func TestResolve(t *testing.T) {
	r := newResolver(t)
	ctx := context.Background()

	st, err := r.Resolve(ctx, "0123456")
	require.NoError(t, err)
	assert.True(t, st.NightEligible)
	assert.False(t, st.ReducedQuota)

	_, err = r.Resolve(ctx, "123456")
	assert.ErrorIs(t, err, shifts.ErrUnknownStudent)
}

func TestAuthenticate(t *testing.T) {
	r := newResolver(t)
	ctx := context.Background()

	t.Run("CaseInsensitiveName", func(t *testing.T) {
		st, err := r.Authenticate(ctx, "1111111", "cAROL")
		require.NoError(t, err)
		assert.True(t, st.IsAdmin)
		assert.Equal(t, "Carol", st.Name)
	})

	t.Run("WrongName", func(t *testing.T) {
		_, err := r.Authenticate(ctx, "1111111", "Alice")
		assert.ErrorIs(t, err, shifts.ErrInvalidCredentials)
	})

	t.Run("UnknownID", func(t *testing.T) {
		_, err := r.Authenticate(ctx, "9999999", "Alice")
		assert.ErrorIs(t, err, shifts.ErrInvalidCredentials)
	})

	t.Run("MalformedInput", func(t *testing.T) {
		_, err := r.Authenticate(ctx, "11111", "Carol")
		assert.ErrorIs(t, err, shifts.ErrInvalidFormat)

		_, err = r.Authenticate(ctx, "1111111", "Carol1")
		assert.ErrorIs(t, err, shifts.ErrInvalidFormat)
	})
}
