// Package collection provides the ordered, identity-keyed list used for
// every repeated field of a Thing Description model.
//
// Nodes are owned by the caller. Adding a node threads it onto the list,
// removing it only unlinks it; the list never copies or frees a node.
//
//	var titles collection.List[model.MultiLang]
//	en := &model.MultiLang{Tag: "en", Value: "Lamp"}
//	_ = titles.Add(en)
//	_ = titles.Add(en) // no-op, en stays listed once
//	first := titles.FindNth(0)
package collection
