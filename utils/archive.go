package utils

import "context"

// Archive stores exported campaign documents under slash-separated keys.
type Archive interface {
	Put(ctx context.Context, key string, body []byte) error
}
