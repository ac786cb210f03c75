package enrichment

// Dedupe collapses people sharing a Key. The last occurrence of a key wins;
// each key keeps the position of its first occurrence.
func Dedupe(people []Person) []Person {
	index := make(map[string]int, len(people))
	out := make([]Person, 0, len(people))
	for _, p := range people {
		k := p.Key()
		if i, ok := index[k]; ok {
			out[i] = p
			continue
		}
		index[k] = len(out)
		out = append(out, p)
	}
	return out
}
