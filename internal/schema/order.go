package schema

import "sort"

// Order returns the tables in creation/insertion order: wherever possible a
// table comes after every table it has foreign keys into. The foreign-key
// graph is not guaranteed acyclic, so this is Kahn's algorithm with a
// deterministic tie-break; any remainder left by a cycle is appended in name
// order and reported as an advisory instead of an error.
func Order(s *Schema) (sorted []*Table, cycle []string) {
	byName := make(map[string]*Table, len(s.Tables))
	indegree := make(map[string]int, len(s.Tables))
	dependents := make(map[string][]string, len(s.Tables))

	for _, t := range s.Tables {
		byName[t.Name] = t
		indegree[t.Name] = 0
	}
	for _, t := range s.Tables {
		seen := make(map[string]bool)
		for _, dep := range t.Dependencies {
			// Self-references and duplicate FK columns must not inflate
			// the in-degree.
			if dep == t.Name || seen[dep] {
				continue
			}
			if _, ok := byName[dep]; !ok {
				continue
			}
			seen[dep] = true
			indegree[t.Name]++
			dependents[dep] = append(dependents[dep], t.Name)
		}
	}

	var ready []string
	for _, t := range s.Tables {
		if indegree[t.Name] == 0 {
			ready = append(ready, t.Name)
		}
	}
	sort.Strings(ready)

	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		sorted = append(sorted, byName[name])

		var released []string
		for _, dep := range dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				released = append(released, dep)
			}
		}
		if len(released) > 0 {
			ready = append(ready, released...)
			sort.Strings(ready)
		}
	}

	if len(sorted) < len(s.Tables) {
		// Cycle: order the remainder by name so output stays stable.
		for _, t := range s.Tables {
			if indegree[t.Name] > 0 {
				cycle = append(cycle, t.Name)
			}
		}
		sort.Strings(cycle)
		for _, name := range cycle {
			sorted = append(sorted, byName[name])
		}
	}

	return sorted, cycle
}
