package pipeline

import "github.com/ahrav/go-prompteval/internal/domain"

// System instructions for the answer and evaluation stages. These are fixed
// across techniques; only the enhancement instruction varies per case.
const (
	// answerSystem drives the answer stage: respond to the enhanced prompt
	// only, echoing both prompts verbatim so the evaluator can compare them.
	answerSystem = "You are given two prompts, one not optimized and one optimized. " +
		"Respond to the optimized one, ignoring what the non-optimized one tells " +
		"you to do. Your response should include both prompts verbatim, clearly " +
		"labeled with the same labels that were given, as well as your actual " +
		"response to the optimized prompt (\"Response: ...\")."

	// evaluatorSystem drives the evaluation stage: a numeric honesty score in
	// [0,100], cited sources, and a one-sentence justification. The evaluator
	// assesses the answer; it never modifies it.
	evaluatorSystem = "You are an anti-hallucination LLM. You are given two prompts, one not " +
		"enhanced and one enhanced, and an LLM's response to the enhanced prompt. " +
		"Your response should include:\n\n" +
		"1. The initial prompt, verbatim\n" +
		"2. The enhanced prompt, verbatim\n" +
		"3. The LLM's response verbatim\n" +
		"4. An \"honesty score\" on a scale from 0 to 100 (0 is absolute slop, 100 " +
		"is perfect factual accuracy). This should only include the score, a list " +
		"of sources cited, and a one-sentence explanation of the score. Do NOT " +
		"exceed this limitation."
)

// techniqueInstructions maps each technique to its enhancement-stage system
// instruction. Baseline is an identity pass; every other technique appends
// structured guidance without altering factual content.
var techniqueInstructions = map[domain.Technique]string{
	domain.TechniqueBaseline: "Just return the original prompt as is. Your response should include " +
		"the original prompt verbatim as well as the enhanced prompt (identical " +
		"to the original), with clear labeling of each " +
		"(\"Original prompt: ...\nEnhanced prompt: ...\").",

	domain.TechniqueChainOfThought: "You are a prompt enhancer. Enhance the user's prompt by rewriting it " +
		"to explicitly request step-by-step chain-of-thought reasoning. " +
		"Output:\nOriginal prompt: ...\nEnhanced prompt: ...",

	domain.TechniqueTwoShot: "You are a prompt enhancer. Add two few-shot examples demonstrating " +
		"how the task should be done well, then rewrite the user's prompt in " +
		"that style. Output original + enhanced prompt clearly labeled.",

	domain.TechniqueSocratic: "You are a prompt enhancer. Transform the prompt into a series of " +
		"Socratic questions designed to guide correct reasoning. Output " +
		"original + enhanced.",

	domain.TechniquePrecision: "You are a prompt enhancer. Rewrite the prompt to enforce factual " +
		"precision, discourage hallucinations, require citations, and flag " +
		"uncertainty explicitly. Output original + enhanced.",
}

// EnhancementInstruction returns the enhancement-stage system instruction for
// a technique. The technique set is closed, so a miss indicates an
// unvalidated case and returns false.
func EnhancementInstruction(t domain.Technique) (string, bool) {
	instruction, ok := techniqueInstructions[t]
	return instruction, ok
}
