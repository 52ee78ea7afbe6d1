package shopify

import (
	apperrors "github.com/Muneebkh2/shopify-iframe-app/pkg/errors"
)

// MetafieldDefinitionCreateMutation registers a metafield definition.
const MetafieldDefinitionCreateMutation = `
mutation metafieldDefinitionCreate($definition: MetafieldDefinitionInput!) {
  metafieldDefinitionCreate(definition: $definition) {
    createdDefinition {
      id
      name
    }
    userErrors {
      field
      message
      code
    }
  }
}
`

// MetafieldDefinitionPinMutation pins a definition so it shows on the product admin page.
const MetafieldDefinitionPinMutation = `
mutation metafieldDefinitionPin($definitionId: ID!) {
  metafieldDefinitionPin(definitionId: $definitionId) {
    pinnedDefinition {
      id
      pinnedPosition
    }
    userErrors {
      field
      message
      code
    }
  }
}
`

// MetafieldsSetMutation upserts metafields on their owners.
const MetafieldsSetMutation = `
mutation metafieldsSet($metafields: [MetafieldsSetInput!]!) {
  metafieldsSet(metafields: $metafields) {
    metafields {
      id
      namespace
      key
      value
      type
    }
    userErrors {
      field
      message
      code
    }
  }
}
`

// WebhookSubscriptionCreateMutation subscribes callbackUrl to a topic.
const WebhookSubscriptionCreateMutation = `
mutation webhookSubscriptionCreate($topic: WebhookSubscriptionTopic!, $callbackUrl: URL!) {
  webhookSubscriptionCreate(topic: $topic, webhookSubscription: { callbackUrl: $callbackUrl, format: JSON }) {
    webhookSubscription {
      id
      topic
    }
    userErrors {
      field
      message
    }
  }
}
`

// MetafieldDefinitionInput is the definition argument of metafieldDefinitionCreate.
type MetafieldDefinitionInput struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	OwnerType string `json:"ownerType"`
}

// MetafieldsSetInput is used with metafieldsSet mutation.
type MetafieldsSetInput struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// UserErrors is the userErrors payload shared by all mutations.
type UserErrors []apperrors.UserError

// Err returns nil when the list is empty, otherwise an *ErrUserErrors.
func (u UserErrors) Err(operation string) error {
	if len(u) == 0 {
		return nil
	}
	return &apperrors.ErrUserErrors{Operation: operation, Errors: []apperrors.UserError(u)}
}
