package dsl

//GroupedSpans represent an ordered collection of Grouped Spans.
//
//groupedSpans.Keys is a slice of Keys (the value returned by the Getter passed to spans.GroupBy, or the request id when built by the Correlator)
//groupedSpans.Spans is a slice of Spans for each Key
//
//GroupedSpans uses parallel arrays to retain the ordering in which Keys are detected - the first Key in the GroupedSpans
//is the first Key that was seen
type GroupedSpans struct {
	Keys   []interface{}
	Spans  []Spans
	lookup map[interface{}]int
}

//NewGroupedSpans initializes a new GroupedSpans
func NewGroupedSpans() *GroupedSpans {
	return &GroupedSpans{
		lookup: map[interface{}]int{},
	}
}

//Append adds a span to the given Key
func (g *GroupedSpans) Append(key interface{}, span Span) {
	g.AppendSpans(key, Spans{span})
}

//AppendSpans appends a slice of Spans to the given Key
func (g *GroupedSpans) AppendSpans(key interface{}, spans Spans) {
	_, hasKey := g.lookup[key]
	if !hasKey {
		g.Keys = append(g.Keys, key)
		g.Spans = append(g.Spans, Spans{})
		g.lookup[key] = len(g.Keys) - 1
	}
	g.Spans[g.lookup[key]] = append(g.Spans[g.lookup[key]], spans...)
}

//Lookup returns the spans for a given key
func (g *GroupedSpans) Lookup(key interface{}) (Spans, bool) {
	index, ok := g.lookup[key]
	if !ok {
		return nil, false
	}
	return g.Spans[index], true
}

//Len returns the number of groups
func (g *GroupedSpans) Len() int {
	return len(g.Keys)
}

//EachGroup is an iterator (think functional thoughts) that loops over all Keys and Spans in order
//
//	groupedSpans.EachGroup(func(key interface{}, spans Spans) error {
//		fmt.Printf("%s: %s\n", key, spans)
//		return nil
//	})
//
//will print all spans in the group.  Returning non-nil will cause the iterator to abort.
func (g *GroupedSpans) EachGroup(f func(interface{}, Spans) error) error {
	for i := 0; i < len(g.Keys); i++ {
		err := f(g.Keys[i], g.Spans[i])
		if err != nil {
			return err
		}
	}
	return nil
}
