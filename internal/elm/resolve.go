package elm

// Resolve cross-references an exposing clause with the body declarations.
//
// With ExposeAll every function and type is kept in source order. With an
// ExposeList only body declarations whose name is exposed are kept; names
// exposed without a body declaration (re-exports) are dropped. Data parsed
// from the body wins over the header's inline form, which only fills in
// what the body lacks.
func Resolve(spec ExportSpec, decls []Declaration) Exports {
	switch spec := spec.(type) {
	case ExposeAll:
		return resolveAll(decls)
	case ExposeList:
		return resolveList(spec, decls)
	default:
		return Exports{}
	}
}

func resolveAll(decls []Declaration) Exports {
	out := make(Exports, 0, len(decls))
	for _, d := range decls {
		if e, ok := exportOf(d); ok {
			out = append(out, e)
		}
	}
	return out
}

func resolveList(spec ExposeList, decls []Declaration) Exports {
	exposed := make(map[string]ExportedName, len(spec.Items))
	for _, item := range spec.Items {
		if _, seen := exposed[item.ExportedName()]; !seen {
			exposed[item.ExportedName()] = item
		}
	}

	out := make(Exports, 0, len(exposed))
	for _, d := range decls {
		e, ok := exportOf(d)
		if !ok {
			continue
		}
		item, ok := exposed[e.Name]
		if !ok {
			continue
		}
		out = append(out, withInline(e, item))
	}
	return out
}

func exportOf(d Declaration) (Export, bool) {
	switch d := d.(type) {
	case Function:
		return Export{Name: d.Name, Kind: KindFunction, Signature: d.Signature}, true
	case TypeDecl:
		return Export{Name: d.Name, Kind: KindType, Definition: d.Definition}, true
	case Comment, Ignore:
		return Export{}, false
	default:
		return Export{}, false
	}
}

func withInline(e Export, item ExportedName) Export {
	switch item := item.(type) {
	case ExportedFunction:
		if e.Signature == nil && item.Signature != nil {
			e.Signature = SplitSignature(*item.Signature)
		}
	case ExportedType:
		if e.Definition == "" && item.Definition != nil {
			e.Definition = *item.Definition
		}
	}
	return e
}
