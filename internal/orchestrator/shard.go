package orchestrator

// Shard returns the URLs assigned to the account at index: the contiguous
// slice [index*quota, (index+1)*quota) clipped to the list. Shards never
// overlap and never wrap around.
func Shard(urls []string, index, quota int) []string {
	if index < 0 || quota < 1 {
		return []string{}
	}
	start := index * quota
	if start >= len(urls) {
		return []string{}
	}
	end := min(start+quota, len(urls))
	return urls[start:end:end]
}

// Assignable is how many URLs the accounts can take between them.
func Assignable(total, accountCount, quota int) int {
	if accountCount < 1 || quota < 1 {
		return 0
	}
	return min(total, accountCount*quota)
}
