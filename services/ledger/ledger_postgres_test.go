//go:build integration

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/courseshop/lib/mytestcontainers"
	"github.com/MarcGrol/courseshop/lib/mytime"
)

func TestPostgresLedger(t *testing.T) {
	c := context.TODO()
	sut := NewPostgresLedger(mytestcontainers.NewPostgres(t))

	purchases := []Purchase{
		{UserID: "u1", CourseID: "c1", PaymentReference: "pi_1", CreatedAt: mytime.ExampleTime},
		{UserID: "u1", CourseID: "c2", PaymentReference: "pi_1", CreatedAt: mytime.ExampleTime},
	}

	inserted, err := sut.Upsert(c, purchases)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	inserted, err = sut.Upsert(c, purchases)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	inserted, err = sut.Upsert(c, []Purchase{{UserID: "u1", CourseID: "c1", PaymentReference: "pi_2", CreatedAt: mytime.ExampleTime.Add(time.Hour)}})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	count, err := sut.CountForUser(c, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = sut.CountForUser(c, "u2")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	listed, err := sut.ListForUser(c, "u1")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "pi_2", listed[2].PaymentReference)
}
