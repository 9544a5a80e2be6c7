package parser

// validObject applies a syntax element's filters to obj: the pinned object,
// then the attribute test, then the story routine.
func (p *Parser) validObject(gt *GrammarToken, obj ObjectRef) bool {
	if gt.Object != Nothing && obj != gt.Object {
		return false
	}
	if gt.Attribute != "" && !p.world.TestAttribute(obj, gt.Attribute, gt.Negate) {
		return false
	}
	if gt.Routine != "" && !p.world.RunPredicate(gt.Routine, obj) {
		return false
	}
	return true
}

func (p *Parser) checkValid(s *session, gt *GrammarToken, objs []ObjectRef) error {
	if !gt.filtered() {
		return nil
	}
	for _, obj := range objs {
		if !p.validObject(gt, obj) {
			return &Failure{
				Kind:       WrongObject,
				Verb:       s.verbWord,
				Object:     obj,
				ObjectName: p.world.Name(obj),
			}
		}
	}
	return nil
}
