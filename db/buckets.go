package db

import (
	"context"
	"fmt"
	"slices"
)

type Bucket byte

// Pebble does not support buckets to differentiate between groups of
// keys like Bolt or MDBX does. We use a global prefix list as a poor
// man's bucket alternative.
const (
	Projects           Bucket = iota // Project ID -> Project
	APIKeys                          // API key prefix -> APIKey
	ProjectAPIKeys                   // Project ID + API key prefix -> nil
	ContractDecorators               // Contract ID -> StoredContract
	Interfaces                       // Interface ID -> InterfaceManifestJSON
	Requests                         // Request ID -> Request
	ProjectRequests                  // Project ID + kind + Request ID -> nil
	SchemaVersion                    // nil -> schema version
)

var bucketNames = [...]string{
	Projects:           "Projects",
	APIKeys:            "APIKeys",
	ProjectAPIKeys:     "ProjectAPIKeys",
	ContractDecorators: "ContractDecorators",
	Interfaces:         "Interfaces",
	Requests:           "Requests",
	ProjectRequests:    "ProjectRequests",
	SchemaVersion:      "SchemaVersion",
}

func BucketValues() []Bucket {
	buckets := make([]Bucket, len(bucketNames))
	for i := range bucketNames {
		buckets[i] = Bucket(i)
	}
	return buckets
}

func (b Bucket) String() string {
	if int(b) < len(bucketNames) {
		return bucketNames[b]
	}
	return fmt.Sprintf("Bucket(%d)", b)
}

// BucketSize is the number of entries in a bucket and their total key and value length.
type BucketSize struct {
	Count uint
	Size  uint64
}

// SizeOf walks every entry of bucket b.
func SizeOf(ctx context.Context, database DB, b Bucket) (BucketSize, error) {
	var result BucketSize
	err := database.View(func(txn Transaction) (err error) {
		it, err := txn.NewIterator(b.Key())
		if err != nil {
			return err
		}
		defer CloseAndWrapOnError(it.Close, &err)

		for it.Next() {
			if err = ctx.Err(); err != nil {
				return err
			}
			var value []byte
			if value, err = it.Value(); err != nil {
				return err
			}
			result.Count++
			result.Size += uint64(len(it.Key()) + len(value))
		}
		return nil
	})
	return result, err
}

// Key flattens a prefix and series of byte arrays into a single []byte.
func (b Bucket) Key(key ...[]byte) []byte {
	return append([]byte{byte(b)}, slices.Concat(key...)...)
}

// UpperBound returns the smallest key greater than every key starting with prefix,
// or nil when no such key exists.
func UpperBound(prefix []byte) []byte {
	upper := slices.Clone(prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}
	return nil
}
