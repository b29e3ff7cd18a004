package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"stacksquest-api/models"

	"gorm.io/gorm"
)

// BadgeMintSyncClient reconciles off-chain badge awards with their on-chain
// mints: the badge contract mints asynchronously, and this worker backfills
// the mint transaction id onto UserNFTBadge rows once confirmed.
type BadgeMintSyncClient struct {
	BaseURL    string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewBadgeMintSyncClient(db *gorm.DB) *BadgeMintSyncClient {
	baseURL := os.Getenv("STACKS_API_URL")
	if baseURL == "" {
		log.Fatal("STACKS_API_URL environment variable is required for badge mint sync")
	}

	return &BadgeMintSyncClient{
		BaseURL: baseURL,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// MintEvent is one confirmed badge mint reported by the chain indexer.
type MintEvent struct {
	StacksAddress string `json:"stacks_address"`
	BadgeCode     string `json:"badge_code"`
	TokenID       int64  `json:"token_id"`
	TxID          string `json:"tx_id"`
}

// GetConfirmedMints fetches badge mint events confirmed since the given time.
func (c *BadgeMintSyncClient) GetConfirmedMints(ctx context.Context, since time.Time) ([]MintEvent, error) {
	since = since.UTC()

	u, err := url.Parse(fmt.Sprintf("%s/v1/badge-mints", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call chain indexer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("chain indexer returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Mints []MintEvent `json:"mints"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode mint events: %w", err)
	}
	return response.Mints, nil
}

// RecordMint fills the transaction id on the matching UserNFTBadge row and
// the token id on the badge definition if not yet known. A mint with no
// matching award is skipped — the award may not have happened off-chain yet.
func (c *BadgeMintSyncClient) RecordMint(mint MintEvent) error {
	var user models.User
	err := c.DB.Where("stacks_address = ?", mint.StacksAddress).First(&user).Error
	if err != nil {
		return fmt.Errorf("no user for address %s: %w", mint.StacksAddress, err)
	}

	var badge models.NFTBadge
	if err := c.DB.Where("code = ?", mint.BadgeCode).First(&badge).Error; err != nil {
		return fmt.Errorf("no badge for code %s: %w", mint.BadgeCode, err)
	}

	if badge.ContractTokenID == nil && mint.TokenID > 0 {
		tokenID := mint.TokenID
		badge.ContractTokenID = &tokenID
		if err := c.DB.Save(&badge).Error; err != nil {
			return fmt.Errorf("failed to record token id for badge %s: %w", badge.Code, err)
		}
	}

	result := c.DB.Model(&models.UserNFTBadge{}).
		Where("user_id = ? AND nft_badge_id = ? AND transaction_id IS NULL", user.ID, badge.ID).
		Update("transaction_id", mint.TxID)
	if result.Error != nil {
		return fmt.Errorf("failed to record mint tx: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("⛓️ Recorded mint %s for user %s badge %s", mint.TxID, user.ID, badge.Code)
	}
	return nil
}

// PollBadgeMints runs the sync loop until ctx is canceled.
func PollBadgeMints(ctx context.Context, client *BadgeMintSyncClient, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastSync := time.Now().Add(-24 * time.Hour)

	for {
		select {
		case <-ctx.Done():
			log.Println("Badge mint sync worker stopping...")
			return
		case <-ticker.C:
			syncStart := time.Now()
			mints, err := client.GetConfirmedMints(ctx, lastSync)
			if err != nil {
				log.Printf("[MintSync] fetch failed: %v", err)
				continue
			}
			for _, mint := range mints {
				if err := client.RecordMint(mint); err != nil {
					log.Printf("[MintSync] %v", err)
				}
			}
			lastSync = syncStart
		}
	}
}
