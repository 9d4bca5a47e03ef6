package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hackclub/hermes/internal/infrastructure/security"
)

var (
	baseURL string
	timeout time.Duration
	apiKey  string
)

// generateKey is swappable in tests.
var generateKey = security.GenerateKey

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hermes-cli",
		Short:         "Hermes CLI tool",
		Long:          `A command line interface for interacting with the Hermes billing API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Hermes API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Admin API key, sent as a bearer token")

	rootCmd.AddCommand(billingCmd())
	rootCmd.AddCommand(orgsCmd())
	rootCmd.AddCommand(itemsCmd())
	rootCmd.AddCommand(disbursementsCmd())
	rootCmd.AddCommand(generateKeyCmd())

	return rootCmd
}

// Billing commands

func billingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Billing run operations",
	}

	cmd.AddCommand(billingRunCmd())
	cmd.AddCommand(billingSummaryCmd())

	return cmd
}

func billingRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run both billing passes now",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := doRequest(http.MethodPost, "/api/v1/billing/run", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return apiError(status, body)
			}

			var report struct {
				ReconcilePending    passResult `json:"reconcile_pending"`
				ProcessNewBillables passResult `json:"process_new_billables"`
			}
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("parsing run report: %w", err)
			}

			printPass("reconcile_pending", report.ReconcilePending)
			printPass("process_new_billables", report.ProcessNewBillables)
			return nil
		},
	}
}

func billingSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show unbilled work, pending disbursements and recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/billing/summary")
		},
	}
}

type passResult struct {
	OrganizationsProcessed int   `json:"organizations_processed"`
	ItemsBilled            int   `json:"items_billed"`
	TotalAmountCents       int64 `json:"total_amount_cents"`
	Errors                 []struct {
		OrganizationID string `json:"organization_id"`
		Error          string `json:"error"`
		Retryable      bool   `json:"retryable"`
	} `json:"errors"`
}

func printPass(name string, r passResult) {
	fmt.Printf("%s: organizations=%d items=%d amount_cents=%d errors=%d\n",
		name, r.OrganizationsProcessed, r.ItemsBilled, r.TotalAmountCents, len(r.Errors))

	for _, e := range r.Errors {
		kind := "permanent"
		if e.Retryable {
			kind = "retryable"
		}
		fmt.Printf("  %s: %s (%s)\n", e.OrganizationID, truncate(e.Error, 120), kind)
	}
}

// Organization commands

func orgsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orgs",
		Short: "Organization operations",
	}

	cmd.AddCommand(orgsCreateCmd())
	cmd.AddCommand(orgsGetCmd())
	cmd.AddCommand(orgsListCmd())
	cmd.AddCommand(orgsSetSlugCmd())

	return cmd
}

func orgsCreateCmd() *cobra.Command {
	var id, name, slug string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"name": name}
			if id != "" {
				payload["id"] = id
			}
			if slug != "" {
				payload["account_slug"] = slug
			}

			status, body, err := doRequest(http.MethodPost, "/api/v1/organizations", payload)
			if err != nil {
				return err
			}
			if status != http.StatusCreated {
				return apiError(status, body)
			}

			return printBody(body)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Organization name")
	cmd.Flags().StringVar(&id, "id", "", "Organization ID, generated when omitted")
	cmd.Flags().StringVar(&slug, "slug", "", "HCB account slug to bill against")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func orgsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/organizations/" + url.PathEscape(args[0]))
		},
	}
}

func orgsListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/organizations" + pageQuery(limit, offset))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	return cmd
}

func orgsSetSlugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-slug <id> <slug>",
		Short: "Point an organization at an HCB account, empty slug pauses billing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"account_slug": args[1]}

			status, body, err := doRequest(http.MethodPut,
				"/api/v1/organizations/"+url.PathEscape(args[0])+"/slug", payload)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return apiError(status, body)
			}

			return printBody(body)
		},
	}
}

// Item commands

func itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Billable item operations",
	}

	cmd.AddCommand(itemsAddCmd())
	cmd.AddCommand(itemsGetCmd())
	cmd.AddCommand(itemsListCmd())

	return cmd
}

func itemsAddCmd() *cobra.Command {
	var org string
	var cost int64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a billable item for an organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{
				"organization_id": org,
				"cost_cents":      cost,
			}

			status, body, err := doRequest(http.MethodPost, "/api/v1/items", payload)
			if err != nil {
				return err
			}
			if status != http.StatusCreated {
				return apiError(status, body)
			}

			return printBody(body)
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "Organization ID")
	cmd.Flags().Int64Var(&cost, "cost", 0, "Cost in cents")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("cost")

	return cmd
}

func itemsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one billable item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/items/" + url.PathEscape(args[0]))
		},
	}
}

func itemsListCmd() *cobra.Command {
	var org string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an organization's items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/organizations/" + url.PathEscape(org) + "/items" + pageQuery(limit, offset))
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "Organization ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}

// Disbursement commands

func disbursementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disbursements",
		Short: "Disbursement operations",
	}

	cmd.AddCommand(disbursementsListCmd())
	cmd.AddCommand(disbursementsGetCmd())
	cmd.AddCommand(disbursementsVerifyCmd())

	return cmd
}

func disbursementsListCmd() *cobra.Command {
	var status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List disbursements, pending by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if status != "" {
				query.Set("status", status)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				query.Set("offset", strconv.Itoa(offset))
			}

			path := "/api/v1/disbursements"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}
			return getAndPrint(path)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: pending, completed or failed")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	return cmd
}

func disbursementsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one disbursement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/disbursements/" + url.PathEscape(args[0]))
		},
	}
}

func disbursementsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Check a disbursement against the payment ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint("/api/v1/disbursements/" + url.PathEscape(args[0]) + "/verify")
		},
	}
}

// Key commands

func generateKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-key",
		Short: "Generate an admin API key and its digest",
		Long: `Prints a fresh admin API key and the digest to configure as ADMIN_API_KEY_HASH.
The key itself is never stored anywhere, so keep it safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := generateKey()
			if err != nil {
				return err
			}

			fmt.Printf("api key: %s\n", key)
			fmt.Printf("digest:  %s\n", security.HashKey(key))
			return nil
		},
	}
}

// HTTP plumbing

// doRequest sends one API request and returns the response status and body.
func doRequest(method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}

// getAndPrint fetches one resource and pretty-prints the JSON response.
func getAndPrint(path string) error {
	status, body, err := doRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apiError(status, body)
	}

	return printBody(body)
}

// apiError turns a non-2xx response into a readable error.
func apiError(status int, body []byte) error {
	var er struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		if er.Message != "" {
			return fmt.Errorf("%s: %s (status %d)", er.Error, er.Message, status)
		}
		return fmt.Errorf("%s (status %d)", er.Error, status)
	}

	return fmt.Errorf("unexpected status %d: %s", status, truncate(string(body), 200))
}

func printBody(body []byte) error {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	printJSON(payload)
	return nil
}

// printJSON pretty-prints v to stdout.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// truncate shortens s to max bytes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func pageQuery(limit, offset int) string {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if len(query) == 0 {
		return ""
	}
	return "?" + query.Encode()
}
