package cache

import "fmt"

// Key builders shared by services so invalidation patterns line up with the
// keys the read paths write.

func CardListKey(provider, cardholderID string) string {
	return fmt.Sprintf("cards:list:%s:%s", provider, cardholderID)
}

func CardTransactionsKey(provider, cardID, cursor string) string {
	return fmt.Sprintf("cards:tx:%s:%s:%s", provider, cardID, cursor)
}

func CardholderKey(provider string, userID uint) string {
	return fmt.Sprintf("cardholder:%s:%d", provider, userID)
}

// CardKeyPattern matches every cached entry for one card.
func CardKeyPattern(cardID string) string {
	return fmt.Sprintf(":%s", cardID)
}
