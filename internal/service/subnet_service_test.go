package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tigersai/internal/collaborator"
	"tigersai/internal/model"
)

func TestSubnetCalculate(t *testing.T) {
	calc := &fakeSubnet{out: json.RawMessage(`{"network":"10.0.0.0"}`)}
	svc := NewSubnetService(calc, time.Second)

	out, err := svc.Calculate(context.Background(), sessionFor(1, "a", model.RoleStudent), collaborator.IPv4, "10.0.0.1", "255.255.255.0")
	require.NoError(t, err)
	assert.JSONEq(t, `{"network":"10.0.0.0"}`, string(out))
	assert.Equal(t, 1, calc.calls)
}

func TestSubnetCalculate_Rejections(t *testing.T) {
	calc := &fakeSubnet{}
	svc := NewSubnetService(calc, time.Second)

	_, err := svc.Calculate(context.Background(), nil, collaborator.IPv4, "10.0.0.1", "24")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = svc.Calculate(context.Background(), sessionFor(1, "a", model.RoleStudent), collaborator.IPv6, "", "64")
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Missing IP address or subnet mask.")
	assert.Zero(t, calc.calls)

	_, err = NewSubnetService(&fakeSubnet{err: errors.New("exit 1")}, time.Second).
		Calculate(context.Background(), sessionFor(1, "a", model.RoleStudent), collaborator.IPv6, "::1", "64")
	assert.ErrorIs(t, err, ErrCollaboratorFailed)
}
