package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"gentstaking/crypto"
	"gentstaking/native/staking"
)

const (
	codeModulePaused     = -32030
	codeLockNotExpired   = -32031
	codeInsufficientFund = -32032
)

const poolPausedMessage = "staking pool paused"

type initializePoolParams struct {
	Authority      string           `json:"authority"`
	Treasury       string           `json:"treasury"`
	EmergencyAdmin string           `json:"emergencyAdmin"`
	Config         poolConfigParams `json:"config"`
}

type poolConfigParams struct {
	EarlyAdopterPeriod   uint64 `json:"earlyAdopterPeriod"`
	MinStakeDuration     uint64 `json:"minStakeDuration"`
	MaxStakeDuration     uint64 `json:"maxStakeDuration"`
	RewardsMultiplierBps uint64 `json:"rewardsMultiplierBps"`
	TreasuryFeeBps       uint64 `json:"treasuryFeeBps"`
}

func (p poolConfigParams) config() staking.PoolConfig {
	return staking.PoolConfig{
		EarlyAdopterPeriod:   p.EarlyAdopterPeriod,
		MinStakeDuration:     p.MinStakeDuration,
		MaxStakeDuration:     p.MaxStakeDuration,
		RewardsMultiplierBps: p.RewardsMultiplierBps,
		TreasuryFeeBps:       p.TreasuryFeeBps,
	}
}

type createStakeAccountParams struct {
	Owner    string `json:"owner"`
	Referrer string `json:"referrer,omitempty"`
}

type stakeParams struct {
	Owner        string `json:"owner"`
	Amount       string `json:"amount"`
	LockDuration uint64 `json:"lockDuration"`
}

type ownerParams struct {
	Owner string `json:"owner"`
}

type emergencyUnstakeParams struct {
	Caller string `json:"caller"`
	Owner  string `json:"owner"`
}

type adminParams struct {
	Caller string `json:"caller"`
}

type updateConfigParams struct {
	Caller string           `json:"caller"`
	Config poolConfigParams `json:"config"`
}

type fundVaultParams struct {
	From   string `json:"from"`
	Amount string `json:"amount"`
}

type creditParams struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type addressParams struct {
	Address string `json:"address"`
}

type poolChangesParams struct {
	Cursor string `json:"cursor,omitempty"`
}

type claimResultResponse struct {
	Owed      string `json:"owed"`
	Fee       string `json:"fee"`
	Net       string `json:"net"`
	ClaimedAt int64  `json:"claimedAt"`
}

type unstakeResultResponse struct {
	Principal string              `json:"principal"`
	Rewards   claimResultResponse `json:"rewards"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

func decodeBech32(addr string) ([20]byte, error) {
	var zero [20]byte
	decoded, err := crypto.DecodeAddress(strings.TrimSpace(addr))
	if err != nil {
		return zero, err
	}
	copy(zero[:], decoded.Bytes())
	return zero, nil
}

func parseAmount(amount string) (*big.Int, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return nil, fmt.Errorf("amount is required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount")
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return value, nil
}

func formatBig(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func claimResponse(result *staking.ClaimResult) claimResultResponse {
	return claimResultResponse{
		Owed:      formatBig(result.Owed),
		Fee:       formatBig(result.Fee),
		Net:       formatBig(result.Net),
		ClaimedAt: result.ClaimedAt,
	}
}

// writeEngineError maps engine sentinels onto RPC error codes so clients can
// branch without parsing messages.
func writeEngineError(w http.ResponseWriter, id interface{}, action string, err error) {
	switch {
	case errors.Is(err, staking.ErrPoolPaused):
		writeError(w, http.StatusServiceUnavailable, id, codeModulePaused, poolPausedMessage, nil)
	case errors.Is(err, staking.ErrLockNotExpired):
		var lockErr *staking.LockNotExpiredError
		var data interface{}
		if errors.As(err, &lockErr) {
			data = map[string]uint64{"remainingSeconds": lockErr.Remaining}
		}
		writeError(w, http.StatusConflict, id, codeLockNotExpired, "lock duration not expired", data)
	case errors.Is(err, staking.ErrInsufficientBalance), errors.Is(err, staking.ErrInsufficientVaultBalance):
		writeError(w, http.StatusConflict, id, codeInsufficientFund, err.Error(), nil)
	case errors.Is(err, staking.ErrUnauthorized):
		writeError(w, http.StatusForbidden, id, codeUnauthorized, err.Error(), nil)
	case errors.Is(err, staking.ErrPoolNotFound), errors.Is(err, staking.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, id, codeServerError, err.Error(), nil)
	default:
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, action, err.Error())
	}
}

func decodeParams(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "exactly one parameter object expected", nil)
		return false
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return false
	}
	return true
}

func (s *Server) handleInitializePool(w http.ResponseWriter, req *RPCRequest) {
	var params initializePoolParams
	if !decodeParams(w, req, &params) {
		return
	}
	authority, err := decodeBech32(params.Authority)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid authority address", err.Error())
		return
	}
	treasury, err := decodeBech32(params.Treasury)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid treasury address", err.Error())
		return
	}
	emergencyAdmin := authority
	if strings.TrimSpace(params.EmergencyAdmin) != "" {
		emergencyAdmin, err = decodeBech32(params.EmergencyAdmin)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid emergency admin address", err.Error())
			return
		}
	}
	if _, err := s.node.InitializePool(authority, treasury, emergencyAdmin, params.Config.config()); err != nil {
		writeEngineError(w, req.ID, "failed to initialize pool", err)
		return
	}
	snapshot, err := s.node.PoolSnapshot()
	if err != nil {
		writeEngineError(w, req.ID, "failed to load pool", err)
		return
	}
	writeResult(w, req.ID, snapshot)
}

func (s *Server) handleCreateStakeAccount(w http.ResponseWriter, req *RPCRequest) {
	var params createStakeAccountParams
	if !decodeParams(w, req, &params) {
		return
	}
	owner, err := decodeBech32(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
		return
	}
	var referrerPtr *[20]byte
	if strings.TrimSpace(params.Referrer) != "" {
		referrer, err := decodeBech32(params.Referrer)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid referrer address", err.Error())
			return
		}
		referrerPtr = &referrer
	}
	if _, err := s.node.CreateStakeAccount(owner, referrerPtr); err != nil {
		writeEngineError(w, req.ID, "failed to create stake account", err)
		return
	}
	snapshot, err := s.node.StakerSnapshot(owner)
	if err != nil {
		writeEngineError(w, req.ID, "failed to load staker", err)
		return
	}
	writeResult(w, req.ID, snapshot)
}

func (s *Server) handleStake(w http.ResponseWriter, req *RPCRequest) {
	var params stakeParams
	if !decodeParams(w, req, &params) {
		return
	}
	owner, err := decodeBech32(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if _, err := s.node.Stake(owner, amount, params.LockDuration); err != nil {
		writeEngineError(w, req.ID, "failed to stake", err)
		return
	}
	snapshot, err := s.node.StakerSnapshot(owner)
	if err != nil {
		writeEngineError(w, req.ID, "failed to load staker", err)
		return
	}
	writeResult(w, req.ID, snapshot)
}

func (s *Server) handleClaimRewards(w http.ResponseWriter, req *RPCRequest) {
	var params ownerParams
	if !decodeParams(w, req, &params) {
		return
	}
	owner, err := decodeBech32(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
		return
	}
	result, err := s.node.ClaimRewards(owner)
	if err != nil {
		writeEngineError(w, req.ID, "failed to claim rewards", err)
		return
	}
	writeResult(w, req.ID, claimResponse(result))
}

func (s *Server) handleUnstake(w http.ResponseWriter, req *RPCRequest) {
	var params ownerParams
	if !decodeParams(w, req, &params) {
		return
	}
	owner, err := decodeBech32(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
		return
	}
	result, err := s.node.Unstake(owner)
	if err != nil {
		writeEngineError(w, req.ID, "failed to unstake", err)
		return
	}
	writeResult(w, req.ID, unstakeResultResponse{
		Principal: formatBig(result.Principal),
		Rewards:   claimResponse(&result.Rewards),
	})
}

func (s *Server) handleEmergencyUnstake(w http.ResponseWriter, req *RPCRequest) {
	var params emergencyUnstakeParams
	if !decodeParams(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	owner, err := decodeBech32(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
		return
	}
	principal, err := s.node.EmergencyUnstake(caller, owner)
	if err != nil {
		writeEngineError(w, req.ID, "failed to emergency unstake", err)
		return
	}
	writeResult(w, req.ID, map[string]string{"principal": formatBig(principal)})
}

func (s *Server) handleSetPaused(w http.ResponseWriter, req *RPCRequest, paused bool) {
	var params adminParams
	if !decodeParams(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if _, err := s.node.SetPaused(caller, paused); err != nil {
		writeEngineError(w, req.ID, "failed to update pause state", err)
		return
	}
	snapshot, err := s.node.PoolSnapshot()
	if err != nil {
		writeEngineError(w, req.ID, "failed to load pool", err)
		return
	}
	writeResult(w, req.ID, snapshot)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, req *RPCRequest) {
	var params updateConfigParams
	if !decodeParams(w, req, &params) {
		return
	}
	caller, err := decodeBech32(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid caller address", err.Error())
		return
	}
	if _, err := s.node.UpdateConfig(caller, params.Config.config()); err != nil {
		writeEngineError(w, req.ID, "failed to update config", err)
		return
	}
	snapshot, err := s.node.PoolSnapshot()
	if err != nil {
		writeEngineError(w, req.ID, "failed to load pool", err)
		return
	}
	writeResult(w, req.ID, snapshot)
}

func (s *Server) handleFundVault(w http.ResponseWriter, req *RPCRequest) {
	var params fundVaultParams
	if !decodeParams(w, req, &params) {
		return
	}
	from, err := decodeBech32(params.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid funder address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.FundVault(from, amount); err != nil {
		writeEngineError(w, req.ID, "failed to fund vault", err)
		return
	}
	snapshot, err := s.node.PoolSnapshot()
	if err != nil {
		writeEngineError(w, req.ID, "failed to load pool", err)
		return
	}
	writeResult(w, req.ID, snapshot)
}

func (s *Server) handleCredit(w http.ResponseWriter, req *RPCRequest) {
	var params creditParams
	if !decodeParams(w, req, &params) {
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.CreditBalance(addr, amount); err != nil {
		writeEngineError(w, req.ID, "failed to credit balance", err)
		return
	}
	balance, err := s.node.BalanceOf(addr)
	if err != nil {
		writeEngineError(w, req.ID, "failed to load balance", err)
		return
	}
	writeResult(w, req.ID, balanceResponse{Address: params.Address, Balance: formatBig(balance)})
}

func (s *Server) handleGetPool(w http.ResponseWriter, req *RPCRequest) {
	if len(req.Params) > 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	snapshot, err := s.node.PoolSnapshot()
	if err != nil {
		writeEngineError(w, req.ID, "failed to load pool", err)
		return
	}
	writeResult(w, req.ID, snapshot)
}

func (s *Server) handleGetStaker(w http.ResponseWriter, req *RPCRequest) {
	var params ownerParams
	if !decodeParams(w, req, &params) {
		return
	}
	owner, err := decodeBech32(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid owner address", err.Error())
		return
	}
	snapshot, err := s.node.StakerSnapshot(owner)
	if err != nil {
		writeEngineError(w, req.ID, "failed to load staker", err)
		return
	}
	writeResult(w, req.ID, snapshot)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, req *RPCRequest) {
	var params addressParams
	if !decodeParams(w, req, &params) {
		return
	}
	addr, err := decodeBech32(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid address", err.Error())
		return
	}
	balance, err := s.node.BalanceOf(addr)
	if err != nil {
		writeEngineError(w, req.ID, "failed to load balance", err)
		return
	}
	writeResult(w, req.ID, balanceResponse{Address: params.Address, Balance: formatBig(balance)})
}

// handlePoolChanges returns the retained change backlog past the supplied
// cursor. Live streaming consumers call Node.SubscribePoolChanges directly;
// over JSON-RPC the feed is polled by cursor.
func (s *Server) handlePoolChanges(w http.ResponseWriter, req *RPCRequest) {
	var params poolChangesParams
	if len(req.Params) > 0 && !decodeParams(w, req, &params) {
		return
	}
	_, cancel, backlog, err := s.node.SubscribePoolChanges(nil, params.Cursor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "failed to read pool changes", err.Error())
		return
	}
	cancel()
	writeResult(w, req.ID, backlog)
}
