package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tigersai/internal/collaborator"
	"tigersai/internal/model"
	"tigersai/pkg/log"
)

// SubnetService 把子网计算交给外部脚本。
type SubnetService interface {
	Calculate(ctx context.Context, caller *model.SessionContext, family collaborator.Family, address, mask string) (json.RawMessage, error)
}

type subnetService struct {
	calc    collaborator.SubnetCalculator
	timeout time.Duration
}

// NewSubnetService 创建一个新的 SubnetService。
func NewSubnetService(calc collaborator.SubnetCalculator, timeout time.Duration) SubnetService {
	return &subnetService{calc: calc, timeout: timeout}
}

func (s *subnetService) Calculate(ctx context.Context, caller *model.SessionContext, family collaborator.Family, address, mask string) (json.RawMessage, error) {
	if caller == nil {
		return nil, ErrAuthenticationRequired
	}
	address, mask = strings.TrimSpace(address), strings.TrimSpace(mask)
	if address == "" || mask == "" {
		return nil, clientError(ErrValidation, "Missing IP address or subnet mask.")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	out, err := s.calc.Calculate(ctx, family, address, mask)
	if err != nil {
		log.Errorw("子网计算脚本失败", "family", family, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCollaboratorFailed, err)
	}
	return out, nil
}
