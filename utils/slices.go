package utils

import (
	"reflect"
	"slices"
)

func Map[T1, T2 any](slice []T1, f func(T1) T2) []T2 {
	if slice == nil {
		return nil
	}

	result := make([]T2, len(slice))
	for i, e := range slice {
		result[i] = f(e)
	}

	return result
}

func All[T any](slice []T, f func(T) bool) bool {
	return slices.IndexFunc(slice, func(e T) bool { return !f(e) }) == -1
}

func AnyOf[T comparable](e T, values ...T) bool {
	return slices.Contains(values, e)
}

func Flatten[T any](sl ...[]T) []T {
	var size int
	for _, s := range sl {
		size += len(s)
	}

	result := make([]T, 0, size)
	for _, s := range sl {
		result = append(result, s...)
	}

	return result
}

// Set returns a new slice with duplicates removed, keeping the first occurrence.
// Panics if the slice contains pointer types.
func Set[T comparable](slice []T) []T {
	if len(slice) == 0 {
		return slice
	}

	if reflect.TypeOf(slice[0]).Kind() == reflect.Ptr {
		panic("Set does not support pointer types")
	}

	return DistinctBy(slice, func(e T) T { return e })
}

// DistinctBy returns a new slice keeping only the first element for every key.
func DistinctBy[T any, K comparable](slice []T, key func(T) K) []T {
	if slice == nil {
		return nil
	}

	result := make([]T, 0, len(slice))
	seen := make(map[K]struct{}, len(slice))
	for _, e := range slice {
		k := key(e)
		if _, ok := seen[k]; !ok {
			result = append(result, e)
			seen[k] = struct{}{}
		}
	}

	return result
}

// Associate indexes the slice by key. Later elements overwrite earlier ones.
func Associate[T any, K comparable](slice []T, key func(T) K) map[K]T {
	result := make(map[K]T, len(slice))
	for _, e := range slice {
		result[key(e)] = e
	}
	return result
}
