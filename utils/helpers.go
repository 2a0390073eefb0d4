package utils

// UniqueStrings returns the input without duplicates, keeping the first occurrence order.
func UniqueStrings(slice []string) []string {
	keys := make(map[string]bool)
	uniqueSlice := []string{}
	for _, entry := range slice {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			uniqueSlice = append(uniqueSlice, entry)
		}
	}
	return uniqueSlice
}
