// Package research implements the deep research pipeline: query expansion,
// question/answer generation and incremental document assembly through the
// document writer facade. Agent behavior is declared as configuration and
// executed against the llm.Completer contract, so providers are swappable and
// tests run against mocks.
package research

// AgentType identifies a specialized agent role in the research pipeline.
type AgentType string

const (
	// TasksAgent executes specific research tasks.
	TasksAgent AgentType = "tasks_agent"
	// QnaAgent generates and answers questions about a topic.
	QnaAgent AgentType = "qna_agent"
	// SummarizerAgent produces concise summaries.
	SummarizerAgent AgentType = "summarizer_agent"
	// GeneratorAgent creates content and information.
	GeneratorAgent AgentType = "generator_agent"
	// QueryExpanderAgent broadens search queries for wider coverage.
	QueryExpanderAgent AgentType = "query_expander_agent"
	// DocumentWriterAgent manages document content, versioning and organization.
	DocumentWriterAgent AgentType = "document_writer_agent"
	// OrchestratorAgent coordinates the workflow of the other agents.
	OrchestratorAgent AgentType = "orchestrator_agent"
)

// AgentConfig declares one agent's behavior: identity, system instructions,
// model id and whether its output must be a single JSON object.
type AgentConfig struct {
	Name         string
	Description  string
	Instructions string
	Model        string
	// StructuredOutput forces JSON object responses for machine parsing.
	StructuredOutput bool
	// SubAgents lists agent types this agent may delegate to. Informational
	// for external orchestrators; the built-in pipeline wires delegation
	// explicitly.
	SubAgents []AgentType
}

// DefaultModel is the model id used when an agent config does not override it.
const DefaultModel = "gpt-4o"

// DefaultAgentConfigs returns the built-in agent roster. Callers may mutate
// the returned map freely; each call produces a fresh copy.
func DefaultAgentConfigs() map[AgentType]AgentConfig {
	return map[AgentType]AgentConfig{
		TasksAgent: {
			Name:        "docmesh_task_agent",
			Description: "Performs tasks based on the query provided to it.",
			Instructions: "You are an AI agent that performs tasks based on the query provided to you. " +
				"You will be provided with a query and you need to perform the task.",
			Model: DefaultModel,
		},
		QnaAgent: {
			Name:        "docmesh_qna_agent",
			Description: "Generates and answers questions based on the query provided to it.",
			Instructions: "You are an AI agent that asks more questions regarding a topic or query to get more information. " +
				"You will be provided with queries and you need to produce question/answer pairs covering them. " +
				"Respond with a JSON object of the form " +
				`{"qna_pairs": [{"question": "...", "answer": "..."}]}.`,
			Model:            DefaultModel,
			StructuredOutput: true,
		},
		SummarizerAgent: {
			Name:        "docmesh_summarizer_agent",
			Description: "Summarizes the information provided to it.",
			Instructions: "You are an AI agent that summarizes the information provided to you. " +
				"You will be provided with content and you need to summarize it.",
			Model: DefaultModel,
		},
		GeneratorAgent: {
			Name:        "docmesh_generator_agent",
			Description: "Generates information based on the query provided to it.",
			Instructions: "You are an AI agent that generates information based on the query provided to you. " +
				"You will be provided with a query and you need to generate information.",
			Model: DefaultModel,
		},
		QueryExpanderAgent: {
			Name:        "docmesh_query_expander_agent",
			Description: "Expands the query provided to it.",
			Instructions: "You are an AI agent that expands the query provided to you into related search queries. " +
				"Respond with a JSON object of the form " +
				`{"related_queries": ["...", "..."]}.`,
			Model:            DefaultModel,
			StructuredOutput: true,
		},
		DocumentWriterAgent: {
			Name:        "docmesh_document_writer_agent",
			Description: "Manages document content, handling versioning and organization.",
			Instructions: "You are an AI agent that manages document content, handling versioning and organization. " +
				"The document is created in advance and you are given its document ID. " +
				"When content exists, analyze and update sections while maintaining logical flow. " +
				"Ensure sections fit within context windows and keep sections organized with clear transitions. " +
				"Use the update section tool to update document sections; it takes the document ID, section title and content.",
			Model: DefaultModel,
		},
		OrchestratorAgent: {
			Name:        "docmesh_orchestrator_agent",
			Description: "Orchestrates the workflow of other agents.",
			Instructions: "You are an AI agent responsible for deep research on a given topic. " +
				"You are given a document ID created in advance. Coordinate the other agents to gather, " +
				"analyze and summarize information, and incrementally update the document sections as you progress " +
				"so that no information is lost.",
			Model: DefaultModel,
			SubAgents: []AgentType{
				TasksAgent,
				QnaAgent,
				SummarizerAgent,
				GeneratorAgent,
				QueryExpanderAgent,
				DocumentWriterAgent,
			},
		},
	}
}
