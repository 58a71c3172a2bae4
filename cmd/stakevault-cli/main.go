package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
)

var rpcEndpoint = defaultRPCEndpoint() // Defaults to localhost, can be overridden via RPC_URL or --rpc flag
var rpcAuthToken = os.Getenv("STAKEVAULT_RPC_TOKEN")

func main() {
	args := os.Args[1:]
	var err error
	rpcEndpoint = defaultRPCEndpoint()
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
	case "stake":
		if len(args) < 3 {
			fmt.Println("Error: Please provide a caller address and item ids.")
			printUsage()
			return
		}
		stakeItems(args[1], args[2])
	case "withdraw":
		if len(args) < 3 {
			fmt.Println("Error: Please provide a caller address and item ids.")
			printUsage()
			return
		}
		withdrawItems(args[1], args[2])
	case "claim":
		if len(args) < 2 {
			fmt.Println("Error: Please provide a caller address.")
			printUsage()
			return
		}
		claimRewards(args[1])
	case "info":
		if len(args) < 2 {
			fmt.Println("Error: Please provide an address.")
			printUsage()
			return
		}
		userStakeInfo(args[1])
	case "preview-claim":
		if len(args) < 2 {
			fmt.Println("Error: Please provide an address.")
			printUsage()
			return
		}
		previewClaim(args[1])
	case "total":
		totalStakedRewards()
	case "program":
		programInfo()
	case "set-rate":
		if len(args) < 2 {
			fmt.Println("Error: Please provide the new hourly rate.")
			printUsage()
			return
		}
		setRewardsPerHour(args[1])
	case "pause":
		pauseDeposits()
	case "unpause":
		unpauseDeposits()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println(`Usage: stakevault-cli [--rpc <url>] <command> [args]

Commands:
  stake <caller> <id,id,...>     Stake the given collectible items
  withdraw <caller> <id,id,...>  Withdraw previously staked items
  claim <caller>                 Claim accrued rewards
  info <address>                 Show staked items and available rewards
  preview-claim <address>        Show the payable amount without claiming
  total                          Show the program-wide reward total
  program                        Show rate, cap and pause status
  set-rate <rate>                Update the hourly base rate (privileged)
  pause                          Gate off new deposits (privileged)
  unpause                        Reopen deposits (privileged)

Privileged commands require STAKEVAULT_RPC_TOKEN to be set.`)
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

func parseItemIDs(raw string) ([]uint64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uint64, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		id, err := strconv.ParseUint(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q", trimmed)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no item ids provided")
	}
	return ids, nil
}

func stakeItems(caller, rawIDs string) {
	ids, err := parseItemIDs(rawIDs)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	result, err := callRPC("stake_stake", map[string]interface{}{"caller": caller, "itemIds": ids}, false)
	if err != nil {
		fmt.Printf("Error staking items: %v\n", err)
		return
	}
	printResult(result)
}

func withdrawItems(caller, rawIDs string) {
	ids, err := parseItemIDs(rawIDs)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	result, err := callRPC("stake_withdraw", map[string]interface{}{"caller": caller, "itemIds": ids}, false)
	if err != nil {
		fmt.Printf("Error withdrawing items: %v\n", err)
		return
	}
	printResult(result)
}

func claimRewards(caller string) {
	result, err := callRPC("stake_claimRewards", map[string]interface{}{"caller": caller}, false)
	if err != nil {
		fmt.Printf("Error claiming rewards: %v\n", err)
		return
	}
	printResult(result)
}

func userStakeInfo(addr string) {
	result, err := callRPC("stake_userStakeInfo", addr, false)
	if err != nil {
		fmt.Printf("Error fetching stake info: %v\n", err)
		return
	}
	printResult(result)
}

func previewClaim(addr string) {
	result, err := callRPC("stake_previewClaim", addr, false)
	if err != nil {
		fmt.Printf("Error previewing claim: %v\n", err)
		return
	}
	printResult(result)
}

func totalStakedRewards() {
	result, err := callRPC("stake_totalStakedRewards", nil, false)
	if err != nil {
		fmt.Printf("Error fetching total: %v\n", err)
		return
	}
	printResult(result)
}

func programInfo() {
	result, err := callRPC("stake_programInfo", nil, false)
	if err != nil {
		fmt.Printf("Error fetching program info: %v\n", err)
		return
	}
	printResult(result)
}

func setRewardsPerHour(rate string) {
	result, err := callRPC("stake_setRewardsPerHour", map[string]string{"rewardsPerHour": rate}, true)
	if err != nil {
		fmt.Printf("Error updating rate: %v\n", err)
		return
	}
	printResult(result)
}

func pauseDeposits() {
	result, err := callRPC("stake_pause", nil, true)
	if err != nil {
		fmt.Printf("Error pausing deposits: %v\n", err)
		return
	}
	printResult(result)
}

func unpauseDeposits() {
	result, err := callRPC("stake_unpause", nil, true)
	if err != nil {
		fmt.Printf("Error resuming deposits: %v\n", err)
		return
	}
	printResult(result)
}

func callRPC(method string, param interface{}, requireAuth bool) (json.RawMessage, error) {
	payload := map[string]interface{}{"id": 1, "jsonrpc": "2.0", "method": method}
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
			return nil, fmt.Errorf("privileged RPC call requires STAKEVAULT_RPC_TOKEN to be set")
		}
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(rpcAuthToken))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", rpcEndpoint, err)
	}
	return resp, nil
}

func printResult(result json.RawMessage) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		fmt.Println(string(result))
		return
	}
	fmt.Println(pretty.String())
}
