package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"stakevault/native/staking"
)

const depositsPausedMessage = "deposits paused"

type stakeParams struct {
	Caller  string   `json:"caller"`
	ItemIDs []uint64 `json:"itemIds"`
}

type withdrawParams struct {
	Caller  string   `json:"caller"`
	ItemIDs []uint64 `json:"itemIds"`
}

type claimParams struct {
	Caller string `json:"caller"`
}

type setRateParams struct {
	RewardsPerHour string `json:"rewardsPerHour"`
}

type stakeResult struct {
	ItemIDs []uint64 `json:"itemIds"`
	Rates   []string `json:"rates"`
}

type claimResult struct {
	Paid string `json:"paid"`
}

type userStakeInfoResult struct {
	Address   string   `json:"address"`
	ItemIDs   []uint64 `json:"itemIds"`
	Available string   `json:"availableRewards"`
}

type previewClaimResult struct {
	Payable string `json:"payable"`
}

type programInfoResult struct {
	RewardsPerHour    string `json:"rewardsPerHour"`
	MaxStakingRewards string `json:"maxStakingRewards"`
	TotalRewards      string `json:"totalStakedRewards"`
	DepositsPaused    bool   `json:"depositsPaused"`
}

func parseAddress(raw string) (common.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return common.Address{}, fmt.Errorf("address is required")
	}
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid address %q", trimmed)
	}
	return common.HexToAddress(trimmed), nil
}

func parseRate(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("rewardsPerHour is required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid rewardsPerHour")
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("rewardsPerHour must not be negative")
	}
	return value, nil
}

func formatRates(rates []*big.Int) []string {
	out := make([]string, len(rates))
	for i, r := range rates {
		if r == nil {
			out[i] = "0"
			continue
		}
		out[i] = r.String()
	}
	return out
}

func (s *Server) writeStakingError(w http.ResponseWriter, id interface{}, action string, err error) {
	switch {
	case errors.Is(err, staking.ErrDepositsPaused):
		writeError(w, http.StatusServiceUnavailable, id, codeDepositsPaused, depositsPausedMessage, nil)
	case errors.Is(err, staking.ErrCapReached):
		writeError(w, http.StatusConflict, id, codeCapReached, "reward cap reached", nil)
	case errors.Is(err, staking.ErrNotConfigured), errors.Is(err, staking.ErrReentrantCall):
		writeError(w, http.StatusInternalServerError, id, codeServerError, fmt.Sprintf("failed to %s", action), err.Error())
	default:
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, fmt.Sprintf("failed to %s", action), err.Error())
	}
}

func (s *Server) handleStake(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params stakeParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if len(params.ItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "itemIds is required", nil)
		return
	}
	rates, err := s.node.StakeItems(caller, params.ItemIDs)
	if err != nil {
		s.writeStakingError(w, req.ID, "stake items", err)
		return
	}
	writeResult(w, req.ID, stakeResult{ItemIDs: params.ItemIDs, Rates: formatRates(rates)})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params withdrawParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if len(params.ItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "itemIds is required", nil)
		return
	}
	if err := s.node.WithdrawItems(caller, params.ItemIDs); err != nil {
		s.writeStakingError(w, req.ID, "withdraw items", err)
		return
	}
	items, _ := s.node.UserStakeInfo(caller)
	writeResult(w, req.ID, stakeResult{ItemIDs: items})
}

func (s *Server) handleClaimRewards(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params claimParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	paid, err := s.node.ClaimRewards(caller)
	if err != nil {
		s.writeStakingError(w, req.ID, "claim rewards", err)
		return
	}
	writeResult(w, req.ID, claimResult{Paid: paid.String()})
}

func parseAddressParam(params []json.RawMessage) (string, common.Address, error) {
	if len(params) != 1 {
		return "", common.Address{}, fmt.Errorf("address parameter required")
	}
	var addrStr string
	if err := json.Unmarshal(params[0], &addrStr); err != nil {
		return "", common.Address{}, fmt.Errorf("invalid address parameter")
	}
	addr, err := parseAddress(addrStr)
	if err != nil {
		return "", common.Address{}, err
	}
	return addrStr, addr, nil
}

func (s *Server) handleUserStakeInfo(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	addrStr, addr, err := parseAddressParam(req.Params)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	items, available := s.node.UserStakeInfo(addr)
	writeResult(w, req.ID, userStakeInfoResult{
		Address:   addrStr,
		ItemIDs:   items,
		Available: available.String(),
	})
}

func (s *Server) handlePreviewClaim(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	_, addr, err := parseAddressParam(req.Params)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	_, available := s.node.UserStakeInfo(addr)
	writeResult(w, req.ID, previewClaimResult{Payable: available.String()})
}

func (s *Server) handleTotalStakedRewards(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, s.node.TotalStakedRewards().String())
}

func (s *Server) handleProgramInfo(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, programInfoResult{
		RewardsPerHour:    s.node.RewardsPerHour().String(),
		MaxStakingRewards: s.node.MaxStakingRewards().String(),
		TotalRewards:      s.node.TotalStakedRewards().String(),
		DepositsPaused:    s.node.DepositsPaused(),
	})
}

func (s *Server) handleSetRewardsPerHour(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return
	}
	var params setRateParams
	if err := json.Unmarshal(req.Params[0], &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return
	}
	rate, err := parseRate(params.RewardsPerHour)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.SetRewardsPerHour(rate); err != nil {
		s.writeStakingError(w, req.ID, "update reward rate", err)
		return
	}
	writeResult(w, req.ID, map[string]string{"rewardsPerHour": rate.String()})
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if err := s.node.PauseDeposits(); err != nil {
		s.writeStakingError(w, req.ID, "pause deposits", err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"depositsPaused": true})
}

func (s *Server) handleUnpause(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if err := s.node.ResumeDeposits(); err != nil {
		s.writeStakingError(w, req.ID, "resume deposits", err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"depositsPaused": false})
}
