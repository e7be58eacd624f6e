// Package generate asks a language model for a concept map about a topic.
//
// A [Request] names the topic, the depth the map should reach and optional
// subtopics to cover. [Prompt] turns it into the instruction sent to the
// model; the reply must be a single JSON object with topic, nodes and edges,
// which is decoded with the tolerant codec in package concept.
//
// The model is reached through the [Completer] interface. [OpenAICompleter]
// talks to any OpenAI-compatible chat completion endpoint:
//
//	c, err := generate.NewOpenAICompleter(apiKey, generate.WithModel("gpt-4o-mini"))
//	gen := generate.NewGenerator(c, cache, nil, logger)
//	doc, err := gen.Generate(ctx, generate.Request{Topic: "Fotosíntesis"})
//
// Replies are cached per (topic, depth, subtopics, model) so repeated
// requests for the same map do not cost another completion.
package generate
