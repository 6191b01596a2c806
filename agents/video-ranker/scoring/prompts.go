package scoring

const densitySystem = `You are an expert content analyst. Extract the information a viewer actually
learns from a video transcript so its information density can be measured.

Identify every:
1. FACT - a specific, verifiable piece of information
2. CONCEPT - an idea or topic that is explained in depth
3. INSIGHT - actionable advice or an unusual perspective

Rate each item's importance from 1 to 3:
- 1 = basic or common knowledge
- 2 = useful information
- 3 = high-value insight or unique perspective

Do not count greetings, sponsor reads, calls to subscribe or other filler.

Respond with a single JSON object of exactly this shape:
{
  "facts": [{"text": "short description", "category": "FACT|CONCEPT|INSIGHT", "importance": 1}],
  "total_count": 0,
  "high_value_count": 0,
  "summary": "2-3 sentences with the key takeaways"
}
high_value_count is the number of items with importance of 2 or more and can never exceed total_count.`

const densityPayload = `Measure the information density of this video.

Video title: %s
Duration: %.1f minutes
Word count: %d words

Transcript:
%s

Return valid JSON only.`

const redundancySystem = `You are a content quality analyst. Find the parts of a transcript that waste the
viewer's time.

Look for:
1. REPETITION - the same point made again without adding anything new
2. TANGENT - material unrelated to what the title promises
3. FILLER - generic statements with no information, beyond the usual social media calls to action

Some repetition for emphasis is fine; report only what is excessive.

Respond with a single JSON object of exactly this shape:
{
  "issues": [{"type": "REPETITION|TANGENT|FILLER", "example": "short quote or description", "impact": "LOW|MEDIUM|HIGH"}],
  "repetition_percentage": 0,
  "tangent_percentage": 0,
  "filler_percentage": 0,
  "summary": "one or two sentences"
}
All percentages are estimates of the share of the whole transcript, between 0 and 100.`

const redundancyPayload = `Analyze this transcript for redundant and low-value content.

Video title: %s
Duration: %.1f minutes

Transcript:
%s

Return valid JSON only.`

const titleSystem = `You are a content accuracy analyst. Judge how well a video delivers what its
title promises.

Evaluate:
1. RELEVANCE - does the content cover what the title promises?
2. COMPLETENESS - is the topic fully addressed or only touched on?
3. CLICKBAIT - is the title sensationalized or misleading?

Scale for both scores:
- 90-100: title matches the content exactly
- 70-89: mostly accurate, minor omissions
- 50-69: partially accurate, some misleading elements
- 30-49: misleading, or the topic is covered only briefly
- 0-29: clickbait or unrelated

Respond with a single JSON object of exactly this shape:
{
  "relevance_score": 0,
  "completeness_score": 0,
  "is_clickbait": false,
  "clickbait_indicators": ["..."],
  "title_promise": "what the title implies",
  "content_delivery": "what was actually delivered",
  "explanation": "2-3 sentences"
}`

const titlePayload = `Does this video deliver on its title?

Video title: %s

Excerpt from the beginning and end of the transcript:
%s

First %d words of the transcript:
%s

Return valid JSON only.`

const originalitySystem = `You are a content comparison analyst. Several videos cover a similar topic.
Compare them against each other and judge how original each one is.

For every video assess:
1. UNIQUE ASPECTS - insights, examples or angles no other video in the set offers
2. COMMON CONTENT - material shared with other videos in the set
3. ORIGINALITY SCORE - 0 to 100, relative to the other videos

Consider unique examples or case studies, novel explanations or analogies, different angles on
the topic and depth against breadth of coverage.

Respond with a single JSON object of exactly this shape:
{
  "videos": [
    {
      "video_id": "the ID exactly as given",
      "originality_score": 0,
      "unique_aspects": ["..."],
      "common_with_others": ["..."],
      "standout_reason": "why this video stands out, or does not"
    }
  ],
  "most_original": "video_id",
  "comparison_summary": "a short summary of how the videos compare"
}
Include one entry for every video you were given.`

const originalityEntry = `Video %d:
- ID: %s
- Title: %s
- Excerpt: %s

`

const originalityPayload = `Compare these videos for originality. They all cover similar topics.

%s
Which video offers the most original perspective? Return valid JSON only.`
