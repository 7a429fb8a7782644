package parser

import "fmt"

const systemPrompt = "You extract structured information about web application tasks. " +
	"Respond with a single JSON object containing exactly these fields: " +
	"app_name, app_url, task, task_name, optimized_description, auth_required."

func parsingPrompt(question string) string {
	return fmt.Sprintf(`Extract structured information from this question about web applications.

Question: %q

IMPORTANT: If the question does NOT mention a specific web application/page or task, you MUST return:
- app_name: "UNKNOWN"
- app_url: "UNKNOWN"
- task: "UNKNOWN"
- task_name: "unknown"
- optimized_description: "UNKNOWN"

Only extract real information if the question is clearly about a web application task.

Extract these fields:

1. **app_name**: The web application name (Linear, Notion, GitHub, Asana, Jira, etc.)
   - Must be a real web application mentioned in the question
   - Return "UNKNOWN" if no web app is mentioned

2. **app_url**: The main URL (https://linear.app, https://notion.so, https://github.com, etc.)
   - The URL must start with https://
   - Must be the correct URL for the identified app
   - Return "UNKNOWN" if the app cannot be identified

3. **task**: What the user wants to do, WITHOUT including the app name
   - Must be a clear action or workflow
   - Do not remove any specifications from the question
   - Return "UNKNOWN" if no task is described

4. **task_name**: A filesystem-safe identifier in snake_case format:
   - Use lowercase letters, numbers, and underscores only
   - Maximum 5 words
   - Example: "create_project_urgent", "filter_issues_by_priority"
   - Return "unknown" if no valid task

5. **optimized_description**: A clear, imperative description for a browser automation agent:
   - Use imperative mood (command form)
   - Include specific values, field names, and expected outcomes
   - Do not add any additional context
   - Return "UNKNOWN" if no valid task

6. **auth_required**: Boolean indicating if user authentication is needed:
   - true: Creating, editing, deleting, or accessing private/user-specific content
     Examples: Creating Linear projects, starring GitHub repos (requires login), creating Notion pages, posting comments
   - false: Viewing public content, browsing public pages, reading public repos
     Examples: Viewing public GitHub repos, reading public documentation, browsing public websites
   - Return true by default unless the task is clearly read-only public content

Examples of INVALID questions that should return UNKNOWN:
- "What's the weather today?"
- "Tell me a joke"
- "How are you?"
- "Random text without meaning"

Examples of VALID questions with auth_required:
- "How do I create a project in Linear?" -> auth_required=true (creating content)
- "How do I star a repository on GitHub?" -> auth_required=true (requires login to star)
- "Show me the stars on torvalds/linux GitHub repo" -> auth_required=false (viewing public data)
- "Create a database in Notion with title 'Customers'" -> auth_required=true (creating content)

Be precise and extract exact information from the question.`, question)
}
