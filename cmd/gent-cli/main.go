package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"gentstaking/crypto"
)

var rpcEndpoint = defaultRPCEndpoint()
var rpcAuthToken = os.Getenv("GENT_RPC_TOKEN")

func main() {
	args := os.Args[1:]
	var err error
	args, err = applyGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(args) < 1 {
		printUsage()
		return
	}

	command := args[0]
	switch command {
	case "generate-key":
		generateKey()
	case "pool":
		printCall("staking_pool", nil, false)
	case "staker":
		requireArgs(args, 2, "Please provide an owner address.")
		printCall("staking_staker", map[string]string{"owner": args[1]}, false)
	case "balance":
		requireArgs(args, 2, "Please provide an address.")
		printCall("staking_balance", map[string]string{"address": args[1]}, false)
	case "create-account":
		requireArgs(args, 2, "Please provide an owner address.")
		params := map[string]string{"owner": args[1]}
		if len(args) > 2 {
			params["referrer"] = args[2]
		}
		printCall("staking_createStakeAccount", params, false)
	case "stake":
		requireArgs(args, 4, "Please provide an owner, an amount and a lock duration in seconds.")
		lock, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			fmt.Println("Error: Invalid lock duration.")
			return
		}
		printCall("staking_stake", map[string]interface{}{
			"owner":        args[1],
			"amount":       args[2],
			"lockDuration": lock,
		}, false)
	case "claim":
		requireArgs(args, 2, "Please provide an owner address.")
		printCall("staking_claimRewards", map[string]string{"owner": args[1]}, false)
	case "unstake":
		requireArgs(args, 2, "Please provide an owner address.")
		printCall("staking_unstake", map[string]string{"owner": args[1]}, false)
	case "emergency-unstake":
		requireArgs(args, 3, "Please provide the admin caller and the owner address.")
		printCall("staking_emergencyUnstake", map[string]string{
			"caller": args[1],
			"owner":  args[2],
		}, true)
	case "pause":
		requireArgs(args, 2, "Please provide the authority address.")
		printCall("staking_pause", map[string]string{"caller": args[1]}, true)
	case "unpause":
		requireArgs(args, 2, "Please provide the authority address.")
		printCall("staking_unpause", map[string]string{"caller": args[1]}, true)
	case "fund-vault":
		requireArgs(args, 3, "Please provide the funder address and an amount.")
		printCall("staking_fundVault", map[string]string{
			"from":   args[1],
			"amount": args[2],
		}, false)
	case "credit":
		requireArgs(args, 3, "Please provide an address and an amount.")
		printCall("staking_credit", map[string]string{
			"address": args[1],
			"amount":  args[2],
		}, true)
	case "init-pool":
		runInitPool(args[1:])
	case "update-config":
		runUpdateConfig(args[1:])
	case "changes":
		params := map[string]string{}
		if len(args) > 1 {
			params["cursor"] = args[1]
		}
		printCall("staking_poolChanges", params, false)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func requireArgs(args []string, n int, message string) {
	if len(args) < n {
		fmt.Println("Error: " + message)
		printUsage()
		os.Exit(1)
	}
}

func parseConfigFlags(args []string) (map[string]interface{}, []string, error) {
	cfg := map[string]interface{}{}
	rest := make([]string, 0, len(args))
	fields := map[string]string{
		"--early-adopter-period": "earlyAdopterPeriod",
		"--min-duration":         "minStakeDuration",
		"--max-duration":         "maxStakeDuration",
		"--multiplier-bps":       "rewardsMultiplierBps",
		"--fee-bps":              "treasuryFeeBps",
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		key, ok := fields[arg]
		if !ok {
			rest = append(rest, arg)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("missing value for %s", arg)
		}
		value, err := strconv.ParseUint(args[i+1], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid value for %s: %v", arg, err)
		}
		cfg[key] = value
		i++
	}
	return cfg, rest, nil
}

func runInitPool(args []string) {
	cfg, rest, err := parseConfigFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(rest) < 2 {
		fmt.Println("Error: Please provide the authority and treasury addresses.")
		printUsage()
		os.Exit(1)
	}
	params := map[string]interface{}{
		"authority": rest[0],
		"treasury":  rest[1],
		"config":    cfg,
	}
	if len(rest) > 2 {
		params["emergencyAdmin"] = rest[2]
	}
	printCall("staking_initializePool", params, true)
}

func runUpdateConfig(args []string) {
	cfg, rest, err := parseConfigFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(rest) < 1 {
		fmt.Println("Error: Please provide the authority address.")
		printUsage()
		os.Exit(1)
	}
	printCall("staking_updateConfig", map[string]interface{}{
		"caller": rest[0],
		"config": cfg,
	}, true)
}

func generateKey() {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Address: %s\n", key.PubKey().Address().String())
	fmt.Printf("Private key: %s\n", hex.EncodeToString(key.Bytes()))
}

func printCall(method string, param interface{}, requireAuth bool) {
	result, err := callRPC(method, param, requireAuth)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		fmt.Println(string(result))
		return
	}
	fmt.Println(pretty.String())
}

func callRPC(method string, param interface{}, requireAuth bool) (json.RawMessage, error) {
	payload := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "method": method}
	if param != nil {
		payload["params"] = []interface{}{param}
	} else {
		payload["params"] = []interface{}{}
	}
	body, _ := json.Marshal(payload)
	resp, err := doRPCRequest(body, requireAuth)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response from node")
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("error from node: %s", rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

func doRPCRequest(payload []byte, requireAuth bool) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, rpcEndpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if requireAuth {
		if rpcAuthToken == "" {
			return nil, fmt.Errorf("privileged RPC call requires GENT_RPC_TOKEN to be set")
		}
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(rpcAuthToken))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", rpcEndpoint, err)
	}
	return resp, nil
}

func defaultRPCEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("RPC_URL")); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func applyGlobalFlags(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--rpc" {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for --rpc")
			}
			rpcEndpoint = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--rpc=") {
			rpcEndpoint = strings.TrimPrefix(arg, "--rpc=")
			continue
		}
		out = append(out, arg)
	}
	return out, nil
}

func printUsage() {
	fmt.Println(`Usage: gent-cli [--rpc <url>] <command> [args]

Commands:
  generate-key                                   Generate a new keypair
  pool                                           Show the pool record
  staker <owner>                                 Show a staker record
  balance <address>                              Show a ledger balance
  create-account <owner> [referrer]              Register a stake account
  stake <owner> <amount> <lockSeconds>           Lock principal
  claim <owner>                                  Claim accrued rewards
  unstake <owner>                                Withdraw matured principal
  emergency-unstake <caller> <owner>             Admin break-glass exit (auth)
  pause <authority>                              Pause the pool (auth)
  unpause <authority>                            Unpause the pool (auth)
  fund-vault <from> <amount>                     Top up the reward vault
  credit <address> <amount>                      Credit a ledger balance (auth)
  init-pool <authority> <treasury> [admin] ...   Initialize the pool (auth)
  update-config <authority> ...                  Update pool config (auth)
  changes [cursor]                               Show pool change backlog

Config flags for init-pool and update-config:
  --early-adopter-period <s> --min-duration <s> --max-duration <s>
  --multiplier-bps <bps> --fee-bps <bps>

Environment:
  RPC_URL          RPC endpoint (default http://localhost:8080)
  GENT_RPC_TOKEN   Bearer token for privileged calls`)
}
