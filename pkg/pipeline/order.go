package pipeline

import (
	"container/heap"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrder returns stage indices in dependency order using Kahn's algorithm.
// Ready stages are taken in insertion order, so the result is deterministic.
// A cycle leaves stages unvisited and the returned slice is shorter than stages.
func topoOrder(stages []*Stage, index map[string]int) []int {
	indeg := make([]int, len(stages))
	dependents := make([][]int, len(stages))
	for i, s := range stages {
		for _, dep := range s.DependsOn {
			j := index[dep]
			dependents[j] = append(dependents[j], i)
			indeg[i]++
		}
	}

	ready := &indexHeap{}
	for i := range stages {
		if indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(stages))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range dependents[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

// validate checks names, dependencies, acyclicity and input wiring
func validate(stages []*Stage) (map[string]int, []int, error) {
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		if s.Name == "" {
			return nil, nil, fmt.Errorf("%w: stage name is required", ErrInvalidStage)
		}
		if s.Run == nil {
			return nil, nil, fmt.Errorf("%w: stage %s has no run function", ErrInvalidStage, s.Name)
		}
		if _, exists := index[s.Name]; exists {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateStage, s.Name)
		}
		index[s.Name] = i
	}

	for _, s := range stages {
		seen := make(map[string]bool, len(s.DependsOn))
		for _, dep := range s.DependsOn {
			if dep == s.Name {
				return nil, nil, fmt.Errorf("%w: %s depends on itself", ErrCycle, s.Name)
			}
			if seen[dep] {
				return nil, nil, fmt.Errorf("%w: %s lists %s twice", ErrInvalidStage, s.Name, dep)
			}
			seen[dep] = true

			j, ok := index[dep]
			if !ok {
				return nil, nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownDependency, s.Name, dep)
			}
			if out := stages[j].Output; out != "" && !containsPath(s.Inputs, out) {
				return nil, nil, fmt.Errorf("%w: %s does not consume %s output %s", ErrInputMismatch, s.Name, dep, out)
			}
		}
	}

	order := topoOrder(stages, index)
	if len(order) != len(stages) {
		return nil, nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(unordered(stages, order), ", "))
	}
	return index, order, nil
}

func unordered(stages []*Stage, order []int) []string {
	visited := make(map[int]bool, len(order))
	for _, i := range order {
		visited[i] = true
	}
	var names []string
	for i, s := range stages {
		if !visited[i] {
			names = append(names, s.Name)
		}
	}
	sort.Strings(names)
	return names
}

func containsPath(paths []string, want string) bool {
	want = filepath.Clean(want)
	for _, p := range paths {
		if filepath.Clean(p) == want {
			return true
		}
	}
	return false
}
