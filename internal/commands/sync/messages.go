package synccmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const bulkSyncMessageType = "localize.sync.bulk"

// BulkSyncCommand triggers a bulk translation run across the named
// collections. An empty Collections slice means every registered collection.
type BulkSyncCommand struct {
	// Collections selects the collection slugs to sync.
	Collections []string `json:"collections,omitempty"`
}

// Type implements command.Message.
func (BulkSyncCommand) Type() string { return bulkSyncMessageType }

// Validate rejects blank collection slugs before handlers execute.
func (cmd BulkSyncCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Collections, validation.By(func(any) error {
			for _, slug := range cmd.Collections {
				if strings.TrimSpace(slug) == "" {
					return validation.NewError("localize.sync.bulk.collection_blank", "collection slugs cannot be blank")
				}
			}
			return nil
		})),
	)
}
