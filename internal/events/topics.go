package events

const TopicTransactions = "marketplace.transactions"

// Partition key = vehicle_id, so every event touching one vehicle keeps its order.
func PartitionKey(vehicleID string) []byte { return []byte(vehicleID) }
