package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidArgument is returned when an engine operation is called with a value
	// no well-formed caller can produce (negative quantity, NaN, non-positive scale)
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFoodNotFound is returned when none of the requested foods matched the dataset
	ErrFoodNotFound = errors.New("food not found in dataset")

	// ErrDatasetLoad is returned when the food dataset cannot be read or decoded
	ErrDatasetLoad = errors.New("food dataset load failed")

	// ErrDatasetEmpty is returned when a dataset contains no valid food records
	ErrDatasetEmpty = errors.New("food dataset contains no valid records")

	// ErrIndexNotLoaded is returned when the food index is queried before it was loaded
	ErrIndexNotLoaded = errors.New("food index not loaded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
