package dsl

//Getter objects can return arbitrary data from a passed-in Span
type Getter interface {
	Get(span Span) (interface{}, bool)
}

//GetterFunc makes it easy to create Getters from bare functions
type GetterFunc func(Span) (interface{}, bool)

//Get satisfies the Getter interface
func (g GetterFunc) Get(span Span) (interface{}, bool) {
	return g(span)
}

//GetIdentity returns the operation identity of a span
var GetIdentity = GetterFunc(func(span Span) (interface{}, bool) {
	return span.Identity, true
})
