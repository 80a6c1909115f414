package store

import "fmt"

// The store's logical document paths double as the Redis pub/sub channel
// names, namespaced by the application id.

func productsChannel(appID string) string {
	return fmt.Sprintf("%s/public/data/products", appID)
}

func profileChannel(appID, userID string) string {
	return fmt.Sprintf("%s/users/%s/profile/data", appID, userID)
}
