package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type slugChecker func(ctx context.Context, candidate string, excludeID *uuid.UUID) (bool, error)

// uniqueSlug derives a URL slug from the name and appends a numeric suffix
// until the candidate is free: red-shirt, red-shirt-1, red-shirt-2, ...
func uniqueSlug(ctx context.Context, name string, excludeID *uuid.UUID, exists slugChecker) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "item"
	}

	candidate := base
	for counter := 1; ; counter++ {
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
