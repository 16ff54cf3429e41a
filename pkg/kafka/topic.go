package kafka

import "fmt"

// TopicPrefix is the namespace shared by every topic the shop publishes to.
const TopicPrefix = "sweetshop"

// Topic builds a fully qualified topic name from a domain and an action,
// e.g. Topic("category", "created") → "sweetshop.category.created".
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
